package repository

import (
	"sync"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// CenterRepository holds the catalogue of centers and their priced services
type CenterRepository struct {
	mu      sync.RWMutex
	centers []models.Center
}

// NewCenterRepository creates a repository seeded with centers
func NewCenterRepository(seed []models.Center) *CenterRepository {
	centers := make([]models.Center, len(seed))
	copy(centers, seed)
	return &CenterRepository{centers: centers}
}

// GetAll returns every center
func (r *CenterRepository) GetAll() []models.Center {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Center, len(r.centers))
	copy(out, r.centers)
	return out
}

// GetByID retrieves a center by ID
func (r *CenterRepository) GetByID(id string) (*models.Center, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.centers {
		if r.centers[i].CenterID == id {
			center := r.centers[i]
			return &center, nil
		}
	}
	return nil, ErrNotFound
}

// FindService resolves a center service ID to its center and priced service
func (r *CenterRepository) FindService(centerServiceID string) (*models.Center, *models.PricedService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.centers {
		if svc, ok := r.centers[i].ServiceByID(centerServiceID); ok {
			center := r.centers[i]
			service := *svc
			return &center, &service, nil
		}
	}
	return nil, nil, ErrNotFound
}

// DefaultCenters is the catalogue the dev backend starts with
func DefaultCenters() []models.Center {
	priced := func(prefix, name string, base float64) []models.PricedService {
		multipliers := map[models.CarType]float64{
			models.CarTypeHatchback: 1,
			models.CarTypeCrossover: 1.25,
			models.CarTypeSUV:       1.5,
		}
		out := make([]models.PricedService, 0, len(models.CarTypes))
		for _, carType := range models.CarTypes {
			out = append(out, models.PricedService{
				CenterServiceID: prefix + "-" + string(carType),
				ServiceName:     name,
				CarType:         carType,
				Price:           base * multipliers[carType],
			})
		}
		return out
	}

	return []models.Center{
		{
			CenterID:   "c-podil",
			CenterName: "PoMoyka Podil",
			Address:    "Kyiv, Naberezhno-Khreshchatytska St, 10",
			Latitude:   50.4651,
			Longitude:  30.5204,
			Services: append(
				priced("c-podil-express", "Express wash", 300),
				priced("c-podil-full", "Full detailing", 1200)...,
			),
		},
		{
			CenterID:   "c-obolon",
			CenterName: "PoMoyka Obolon",
			Address:    "Kyiv, Obolonskyi Ave, 1",
			Latitude:   50.5012,
			Longitude:  30.4980,
			Services: append(
				priced("c-obolon-express", "Express wash", 280),
				priced("c-obolon-interior", "Interior cleaning", 650)...,
			),
		},
	}
}
