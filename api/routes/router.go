package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopstack/shopstack-backend/api/controllers"
	"github.com/shopstack/shopstack-backend/api/middleware"
	authsvc "github.com/shopstack/shopstack-backend/internal/auth"
	customersvc "github.com/shopstack/shopstack-backend/internal/customers"
	dashboardsvc "github.com/shopstack/shopstack-backend/internal/dashboard"
	inventorysvc "github.com/shopstack/shopstack-backend/internal/inventory"
	productsvc "github.com/shopstack/shopstack-backend/internal/products"
	purchasesvc "github.com/shopstack/shopstack-backend/internal/purchases"
	salesvc "github.com/shopstack/shopstack-backend/internal/sales"
	shopsvc "github.com/shopstack/shopstack-backend/internal/shops"
	"github.com/shopstack/shopstack-backend/pkg/auth/session"
	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/db"
	"github.com/shopstack/shopstack-backend/pkg/logger"
	"github.com/shopstack/shopstack-backend/pkg/redis"
)

// Services bundles the domain services the router wires to endpoints.
type Services struct {
	Auth      authsvc.Service
	Products  productsvc.Service
	Customers customersvc.Service
	Sales     salesvc.Service
	Inventory inventorysvc.Service
	Purchases purchasesvc.Service
	Dashboard dashboardsvc.Service
	Shops     shopsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
			r.Get("/me", controllers.AuthMe(svcs.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))
			r.Put("/{productId}", controllers.UpdateProduct(svcs.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(svcs.Products, logg))
			r.Get("/{productId}/stock", controllers.GetStockItem(svcs.Inventory, logg))
			r.Get("/{productId}/movements", controllers.ListStockMovements(svcs.Inventory, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(svcs.Customers, logg))
			r.Patch("/{customerId}", controllers.UpdateCustomer(svcs.Customers, logg))
			r.Delete("/{customerId}", controllers.DeleteCustomer(svcs.Customers, logg))
			r.Get("/{customerId}/sales", controllers.CustomerSales(svcs.Sales, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(svcs.Sales, logg))
			r.Post("/", controllers.FinalizeSale(svcs.Sales, logg))
			r.Get("/{saleId}", controllers.GetSale(svcs.Sales, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.ListStock(svcs.Inventory, logg))
			r.Get("/low", controllers.ListLowStock(svcs.Inventory, logg))
			r.Post("/adjust", controllers.AdjustStock(svcs.Inventory, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.ListVendors(svcs.Purchases, logg))
			r.Post("/", controllers.CreateVendor(svcs.Purchases, logg))
			r.Get("/{vendorId}", controllers.GetVendor(svcs.Purchases, logg))
			r.Put("/{vendorId}", controllers.UpdateVendor(svcs.Purchases, logg))
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", controllers.ListPurchaseOrders(svcs.Purchases, logg))
			r.Post("/", controllers.ReceiveOrder(svcs.Purchases, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", controllers.DashboardSummary(svcs.Dashboard, logg))
			r.Get("/low-stock", controllers.DashboardLowStock(svcs.Dashboard, logg))
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", controllers.ListShops(svcs.Shops, logg))
			r.Post("/", controllers.CreateShop(svcs.Shops, logg))
			r.Get("/{shopId}", controllers.GetShop(svcs.Shops, logg))
			r.Put("/{shopId}", controllers.UpdateShop(svcs.Shops, logg))
		})
	})

	return r
}
