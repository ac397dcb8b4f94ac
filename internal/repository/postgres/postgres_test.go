package postgres

import (
	"context"
	"os"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// Tests d'intégration, lancés seulement avec POSTGRES_TEST_URL (postgres://...)
type PostgresTestSuite struct {
	suite.Suite
	ctx    context.Context
	dsn    string
	db     *gorm.DB
	repos  *Repositories
	seller *models.User
	buyer  *models.User
}

func TestPostgresTestSuite(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL non défini")
	}
	suite.Run(t, &PostgresTestSuite{dsn: dsn})
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()
	log := zerolog.Nop()
	require.NoError(s.T(), database.Migrate(s.dsn, log))

	db, err := database.OpenPostgres(s.ctx, s.dsn, log)
	require.NoError(s.T(), err)
	s.db = db
	s.repos = New(db)
}

func (s *PostgresTestSuite) TearDownSuite() {
	_ = database.ClosePostgres(s.db)
	_ = database.MigrateDown(s.dsn)
}

func (s *PostgresTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM order_items")
	s.db.Exec("DELETE FROM orders")
	s.db.Exec("DELETE FROM cart_items")
	s.db.Exec("DELETE FROM product_images")
	s.db.Exec("DELETE FROM products")
	s.db.Exec("DELETE FROM users")

	s.seller = &models.User{Email: "seller@test.local", Role: models.RoleSeller}
	s.buyer = &models.User{Email: "buyer@test.local", Role: models.RoleBuyer}
	s.Require().NoError(s.repos.Users.Create(s.ctx, s.seller))
	s.Require().NoError(s.repos.Users.Create(s.ctx, s.buyer))
}

func (s *PostgresTestSuite) newProduct(name string, price float64) *models.Product {
	p := &models.Product{
		Name:     name,
		Price:    price,
		Category: "tops",
		Sizes:    models.StringList{"S", "M"},
		Stock:    5,
		SellerID: s.seller.ID,
		Images:   []models.ProductImage{{URL: "https://img/" + name + ".png"}},
	}
	s.Require().NoError(s.repos.Products.Create(s.ctx, p))
	return p
}

func (s *PostgresTestSuite) TestUserEmailIsUnique() {
	err := s.repos.Users.Create(s.ctx, &models.User{Email: "SELLER@test.local", Role: models.RoleBuyer})
	s.ErrorIs(err, repository.ErrConflict)

	got, err := s.repos.Users.GetByEmail(s.ctx, "Seller@Test.local")
	s.Require().NoError(err)
	s.Equal(s.seller.ID, got.ID)
}

func (s *PostgresTestSuite) TestProductFiltersAndImages() {
	shirt := s.newProduct("shirt", 500)
	s.newProduct("coat", 9000)

	min := 1000.0
	list, err := s.repos.Products.List(s.ctx, repository.ProductFilter{MinPrice: &min})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("coat", list[0].Name)

	list, err = s.repos.Products.List(s.ctx, repository.ProductFilter{Size: "M", Search: "SHI"})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(shirt.ID, list[0].ID)

	shirt.Images = []models.ProductImage{{URL: "https://img/a.png"}, {URL: "https://img/b.png"}}
	s.Require().NoError(s.repos.Products.Update(s.ctx, shirt))
	got, err := s.repos.Products.Get(s.ctx, shirt.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Images, 2)
	s.Equal("https://img/a.png", got.FirstImageURL())
}

func (s *PostgresTestSuite) TestProductListSort() {
	s.newProduct("shirt", 500)
	s.newProduct("Coat", 9000)
	s.newProduct("apron", 700)

	names := func(sort repository.ProductSort) []string {
		list, err := s.repos.Products.List(s.ctx, repository.ProductFilter{Sort: sort})
		s.Require().NoError(err)
		var out []string
		for _, p := range list {
			out = append(out, p.Name)
		}
		return out
	}

	s.Equal([]string{"apron", "Coat", "shirt"}, names(""))
	s.Equal([]string{"shirt", "apron", "Coat"}, names(repository.SortPriceAsc))
	s.Equal([]string{"Coat", "apron", "shirt"}, names(repository.SortPriceDesc))
	s.Equal([]string{"apron", "Coat", "shirt"}, names(repository.SortNameAsc))
	s.Equal([]string{"shirt", "Coat", "apron"}, names(repository.SortNameDesc))
}

func (s *PostgresTestSuite) TestCartUpsertMergesQuantity() {
	p := s.newProduct("shirt", 500)

	first, err := s.repos.Cart.Add(s.ctx, &models.CartItem{UserID: s.buyer.ID, ProductID: p.ID, Quantity: 1, Size: "M", PriceAtAddition: 500})
	s.Require().NoError(err)
	second, err := s.repos.Cart.Add(s.ctx, &models.CartItem{UserID: s.buyer.ID, ProductID: p.ID, Quantity: 2, Size: "M", PriceAtAddition: 999})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(3, second.Quantity)
	s.Equal(500.0, second.PriceAtAddition)
	s.Equal("shirt", second.Product.Name)

	items, err := s.repos.Cart.List(s.ctx, s.buyer.ID)
	s.Require().NoError(err)
	s.Len(items, 1)

	_, err = s.repos.Cart.UpdateQuantity(s.ctx, s.seller.ID, first.ID, 2)
	s.ErrorIs(err, repository.ErrNotFound)

	s.Require().NoError(s.repos.Cart.Clear(s.ctx, s.buyer.ID))
	items, _ = s.repos.Cart.List(s.ctx, s.buyer.ID)
	s.Empty(items)
}

func (s *PostgresTestSuite) TestOrders() {
	p := s.newProduct("shirt", 500)
	order := &models.Order{
		UserID: s.buyer.ID, Status: models.OrderCreated, Total: 1000,
		FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1",
		DeliveryMethod: models.DeliveryPickup, PaymentMethod: models.PaymentCash,
		Items: []models.OrderItem{{ProductID: p.ID, Name: p.Name, Price: 500, Quantity: 2}},
	}
	s.Require().NoError(s.repos.Orders.Create(s.ctx, order))

	got, err := s.repos.Orders.Get(s.ctx, s.buyer.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(2, got.ItemCount())

	_, err = s.repos.Orders.Get(s.ctx, s.seller.ID, order.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}
