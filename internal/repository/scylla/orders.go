package scylla

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// OrderRepo stocke l'historique des commandes dans ScyllaDB.
// Les lignes de commande sont sérialisées en JSON dans la colonne items.
type OrderRepo struct {
	session *gocql.Session
}

var _ repository.OrderRepository = (*OrderRepo)(nil)

func NewOrderRepo(session *gocql.Session) *OrderRepo {
	return &OrderRepo{session: session}
}

// EnsureSchema crée les tables si besoin, le keyspace doit déjà exister
func (r *OrderRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if err := r.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("schéma commandes: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	values, err := orderValues(order)
	if err != nil {
		return err
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(stmtInsertOrderByUser, values...)
	batch.Query(stmtInsertOrder, values...)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("création commande: %w", err)
	}
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return []models.Order{}, nil
	}

	iter := r.session.Query(stmtOrdersByUser, uid).WithContext(ctx).Iter()
	scanner := iter.Scanner()

	orders := []models.Order{}
	for scanner.Next() {
		var row orderRow
		if err := scanner.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("lecture commande: %w", err)
		}
		order, err := row.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("commandes: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	oid, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, fmt.Errorf("commande %s: %w", orderID, repository.ErrNotFound)
	}

	var row orderRow
	err = r.session.Query(stmtOrderByID, oid).WithContext(ctx).Scan(row.dest()...)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, fmt.Errorf("commande %s: %w", orderID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("commande %s: %w", orderID, err)
	}

	order, err := row.toModel()
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("commande %s: %w", orderID, repository.ErrNotFound)
	}
	return &order, nil
}

type orderRow struct {
	orderID        gocql.UUID
	userID         gocql.UUID
	createdAt      time.Time
	status         string
	total          float64
	firstName      string
	lastName       string
	email          string
	phone          string
	address        string
	comment        string
	deliveryMethod string
	paymentMethod  string
	items          string
}

func (r *orderRow) dest() []any {
	return []any{
		&r.orderID, &r.userID, &r.createdAt, &r.status, &r.total, &r.firstName, &r.lastName,
		&r.email, &r.phone, &r.address, &r.comment, &r.deliveryMethod, &r.paymentMethod, &r.items,
	}
}

func (r orderRow) toModel() (models.Order, error) {
	order := models.Order{
		ID:             r.orderID.String(),
		UserID:         r.userID.String(),
		CreatedAt:      r.createdAt,
		Status:         models.OrderStatus(r.status),
		Total:          r.total,
		FirstName:      r.firstName,
		LastName:       r.lastName,
		Email:          r.email,
		Phone:          r.phone,
		Address:        r.address,
		Comment:        r.comment,
		DeliveryMethod: models.DeliveryMethod(r.deliveryMethod),
		PaymentMethod:  models.PaymentMethod(r.paymentMethod),
		Items:          []models.OrderItem{},
	}
	if r.items != "" {
		if err := json.Unmarshal([]byte(r.items), &order.Items); err != nil {
			return models.Order{}, fmt.Errorf("lignes commande %s: %w", order.ID, err)
		}
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order, nil
}

func orderValues(order *models.Order) ([]any, error) {
	oid, err := gocql.ParseUUID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("identifiant commande %q: %w", order.ID, err)
	}
	uid, err := gocql.ParseUUID(order.UserID)
	if err != nil {
		return nil, fmt.Errorf("identifiant utilisateur %q: %w", order.UserID, err)
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	return []any{
		oid, uid, order.CreatedAt, string(order.Status), order.Total, order.FirstName, order.LastName,
		order.Email, order.Phone, order.Address, order.Comment, string(order.DeliveryMethod),
		string(order.PaymentMethod), string(items),
	}, nil
}
