package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"storefront/controllers"
	"storefront/middlewares"
	"storefront/utils"
)

type Deps struct {
	Orders         *controllers.OrderController
	Customers      *controllers.CustomerController
	Admins         *controllers.AdminController
	Products       *controllers.ProductController
	Tokens         *utils.JWTManager
	Logger         *zap.Logger
	UploadDir      string
	AllowedOrigins []string
}

func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Logger), middlewares.PrometheusMiddleware())
	r.Use(middlewares.CORS(d.AllowedOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	customerAuth := middlewares.AuthMiddleware(d.Tokens)
	adminAuth := middlewares.AdminMiddleware(d.Tokens)

	api := r.Group("/api")
	{
		api.POST("/customers/register", d.Customers.Register)
		api.POST("/customers/login", d.Customers.Login)
		api.POST("/admin/login", d.Admins.Login)
		api.GET("/products", d.Products.List)
	}

	customer := api.Group("", customerAuth)
	{
		customer.GET("/customers/profile", d.Customers.Profile)
		customer.PUT("/customers/profile", d.Customers.UpdateProfile)
		customer.GET("/customers/orders", d.Orders.ListCustomerOrders)
		customer.POST("/orders", d.Orders.CreateOrder)
	}

	admin := api.Group("", adminAuth)
	{
		admin.GET("/orders", d.Orders.ListOrders)
		admin.GET("/orders/:id", d.Orders.GetOrder)
		admin.PUT("/orders/:id/status", d.Orders.UpdateOrderStatus)

		admin.POST("/products", d.Products.Create)
		admin.POST("/products/upload-image", d.Products.UploadImage)
		admin.PUT("/products/:id", d.Products.Update)
		admin.DELETE("/products/:id", d.Products.Delete)
	}

	return r
}
