package agents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
)

// Repository manages persistence for agents and the invoice rows their
// settlement summaries are derived from.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, agent *models.Agent) error
	Update(ctx context.Context, agent *models.Agent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Agent, error)
	List(ctx context.Context, activeOnly bool) ([]models.Agent, error)
	ListInvoices(ctx context.Context, agentID uuid.UUID) ([]models.Invoice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an agent repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, agent *models.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *repository) Update(ctx context.Context, agent *models.Agent) error {
	return r.db.WithContext(ctx).Save(agent).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Agent, error) {
	query := r.db.WithContext(ctx).Model(&models.Agent{}).Order("name ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var agents []models.Agent
	if err := query.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// ListInvoices returns every invoice attributed to the agent. Settlement
// summaries need the full set, so this query is unpaginated.
func (r *repository) ListInvoices(ctx context.Context, agentID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
