package models

// PricedService is a service offered by a center for one car type
type PricedService struct {
	CenterServiceID string  `json:"centerServiceId"`
	ServiceName     string  `json:"serviceName"`
	CarType         CarType `json:"carType"`
	Price           float64 `json:"price"`
	Description     string  `json:"description,omitempty"`
}

// Center represents a car-wash/detailing center
type Center struct {
	CenterID   string          `json:"centerId"`
	CenterName string          `json:"centerName"`
	Address    string          `json:"address"`
	Latitude   float64         `json:"latitude,omitempty"`
	Longitude  float64         `json:"longitude,omitempty"`
	Services   []PricedService `json:"services"`
}

// ServiceByID finds a priced service offered by the center
func (c *Center) ServiceByID(centerServiceID string) (*PricedService, bool) {
	for i := range c.Services {
		if c.Services[i].CenterServiceID == centerServiceID {
			return &c.Services[i], true
		}
	}
	return nil, false
}

// ServicesFor returns the services priced for the given car type
func (c *Center) ServicesFor(carType CarType) []PricedService {
	var out []PricedService
	for _, s := range c.Services {
		if s.CarType == carType {
			out = append(out, s)
		}
	}
	return out
}
