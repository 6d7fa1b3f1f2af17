package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Middleware *Middleware
	User       *UserHandler
	Seller     *SellerHandler
	Product    *ProductHandler
	Cart       *CartHandler
	Address    *AddressHandler
	Order      *OrderHandler
}

// NewRouter wires the full HTTP surface.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(h.Middleware.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Welcome to the server!"))
	})

	r.Route("/api/user", func(r chi.Router) {
		r.With(h.Middleware.LimitAuth).Post("/register", h.User.Register)
		r.With(h.Middleware.LimitVerify).Post("/verify-email", h.User.VerifyEmail)
		r.With(h.Middleware.LimitAuth).Post("/login", h.User.Login)
		r.With(h.Middleware.LimitAuth).Post("/forgot-password", h.User.ForgotPassword)
		r.With(h.Middleware.LimitVerify).Post("/verify-reset-otp", h.User.VerifyResetOTP)
		r.With(h.Middleware.LimitAuth).Post("/reset-password", h.User.ResetPassword)
		r.Post("/google-login", h.User.GoogleLogin)
		r.With(h.Middleware.RequireUser).Get("/is-auth", h.User.IsAuth)
		r.Post("/logout", h.User.Logout)
	})

	r.Route("/api/seller", func(r chi.Router) {
		r.With(h.Middleware.LimitAuth).Post("/login", h.Seller.Login)
		r.With(h.Middleware.RequireSeller).Get("/is-auth", h.Seller.IsAuth)
		r.Post("/logout", h.Seller.Logout)
	})

	r.Route("/api/product", func(r chi.Router) {
		r.Get("/list", h.Product.List)
		r.Get("/id", h.Product.Get)
		r.Group(func(r chi.Router) {
			r.Use(h.Middleware.RequireSeller)
			r.Post("/add", h.Product.Add)
			r.Post("/update", h.Product.Update)
			r.Post("/stock", h.Product.ChangeStock)
			r.Post("/delete", h.Product.Delete)
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(h.Middleware.RequireUser)
		r.Post("/update", h.Cart.Update)
	})

	r.Route("/api/address", func(r chi.Router) {
		r.Use(h.Middleware.RequireUser)
		r.Post("/add", h.Address.Add)
		r.Get("/get", h.Address.List)
		r.Put("/update/{id}", h.Address.Update)
		r.Delete("/delete/{id}", h.Address.Delete)
	})

	r.Route("/api/order", func(r chi.Router) {
		r.With(h.Middleware.RequireUser).Post("/cod", h.Order.PlaceCOD)
		r.With(h.Middleware.RequireUser).Get("/user", h.Order.ListUser)
		r.With(h.Middleware.RequireSeller).Get("/seller", h.Order.ListSeller)
	})

	return r
}
