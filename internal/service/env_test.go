package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/testutil"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
)

type testEnv struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Events   *testutil.Publisher
	Stripe   *testutil.Stripe
	PayPal   *testutil.PayPal
	Catalog  *CatalogService
	Coupons  *CouponService
	Checkout *CheckoutService
	Orders   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.InitTestDB(t)
	r := repo.New(db)
	pub := &testutil.Publisher{}

	env := &testEnv{
		DB:     db,
		Repo:   r,
		Events: pub,
		Stripe: testutil.NewStripe(),
		PayPal: testutil.NewPayPal(),
	}
	env.Catalog = &CatalogService{Repo: r, Events: pub}
	env.Coupons = &CouponService{Repo: r}
	env.Checkout = &CheckoutService{
		Repo:          r,
		Catalog:       env.Catalog,
		Coupons:       env.Coupons,
		Events:        pub,
		Stripe:        env.Stripe,
		PayPal:        env.PayPal,
		Currency:      "usd",
		PublicBaseURL: "https://shop.test",
	}
	env.Orders = &OrderService{Repo: r, Checkout: env.Checkout, Events: pub}
	return env
}

func (env *testEnv) seedProduct(t *testing.T, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:            "Classic Tee",
		Description:     "Heavy cotton tee",
		Price:           testutil.Dec(price),
		Images:          models.StringList{"https://cdn.test/tee.png"},
		Category:        "tshirts",
		AvailableColors: models.StringList{"black", "white"},
		AvailableSizes:  models.StringList{"S", "M", "L"},
		Published:       true,
	}
	require.NoError(t, env.Repo.CreateProduct(context.Background(), p))
	return p
}

func (env *testEnv) seedCoupon(t *testing.T, code string, pct int, active bool) {
	t.Helper()
	_, err := env.Coupons.CreateCoupon(context.Background(), transport.CreateCouponRequest{
		Code:               code,
		DiscountPercentage: pct,
		IsActive:           &active,
		Description:        "test coupon",
	})
	require.NoError(t, err)
}

func (env *testEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	n, err := env.Repo.CountOrders(context.Background())
	require.NoError(t, err)
	return n
}

func deliveryRequest(productID string) transport.CheckoutRequest {
	return transport.CheckoutRequest{
		ProductID:     productID,
		SelectedColor: "black",
		SelectedSize:  "M",
		Quantity:      1,
		Customer: transport.CustomerInfo{
			Name:    "Ann Lee",
			Email:   "ann@shop.test",
			Phone:   "+1 512 555 0100",
			Address: "1 Main St, Austin, TX",
		},
	}
}
