package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/internal/models"
)

// TransactionRepository keeps transactions and their ratings in memory
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]models.Transaction
}

// NewTransactionRepository creates an empty transaction repository
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{transactions: make(map[string]models.Transaction)}
}

// Create stores a new transaction, assigning its ID and creation time
func (r *TransactionRepository) Create(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	r.transactions[tx.ID] = *tx
	return nil
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(userID string) []models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Rate attaches a rating to a transaction owned by userID
func (r *TransactionRepository) Rate(transactionID, userID string, value int) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.transactions[transactionID]
	if !ok || tx.UserID != userID {
		return nil, ErrNotFound
	}
	if tx.IsRated() {
		return nil, ErrAlreadyRated
	}

	ratingID := uuid.NewString()
	tx.RatingID = &ratingID
	tx.RatingValue = &value
	r.transactions[transactionID] = tx
	return &tx, nil
}
