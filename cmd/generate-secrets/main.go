package main

import (
	"fmt"
	"log"

	"github.com/pomoyka/pomoyka-client/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secret Generator for PoMoyka")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	publicKey, privateKey, err := utils.GenerateLiqPayKeys()
	if err != nil {
		log.Fatalf("Failed to generate LiqPay keys: %v", err)
	}

	storeKey, err := utils.GenerateStoreKey()
	if err != nil {
		log.Fatalf("Failed to generate token store key: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Dev backend (.env):")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Printf("LIQPAY_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("LIQPAY_PRIVATE_KEY=%s\n", privateKey)
	fmt.Println()
	fmt.Println("Client (.env):")
	fmt.Println()
	fmt.Printf("TOKEN_STORE_KEY=%s\n", storeKey)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("⚠️  The LiqPay private key belongs to the backend only, never ship it with the client.")
	fmt.Println("===========================================")
}
