// Package routes mounts the HTTP surface onto the named-route router.
package routes

import (
	"github.com/rishivikram/vastra/app/controllers"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/middleware"
	"github.com/rishivikram/vastra/pkg/router"
	"github.com/rishivikram/vastra/pkg/ws"
)

// RegisterAPI mounts every /api route. feed is the live order-status hub,
// shared with the event listener that publishes into it.
func RegisterAPI(r *router.Router, feed *ws.Hub) {
	users := controllers.NewUserController()
	products := controllers.NewProductController()
	carts := controllers.NewCartController()
	orders := controllers.NewOrderController(feed)
	colors := controllers.NewColorController()
	enquiries := controllers.NewEnquiryController()

	authed := middleware.Authenticate(repositories.NewUserRepository())
	admin := middleware.RequireAdmin

	api := r.Group("/api")

	// Public catalogue and contact form.
	api.Get("/product", "product.list", products.List)
	api.Get("/product/{id}", "product.get", products.Get)
	api.Get("/color", "color.list", colors.All)
	api.Get("/color/{id}", "color.get", colors.Get)
	api.Post("/enquiry", "enquiry.create", enquiries.Create)

	// Authenticated surface.
	auth := api.Group("", authed)

	auth.Post("/user/cart", "cart.add", carts.Add)
	auth.Get("/user/cart", "cart.list", carts.List)
	auth.Delete("/user/cart", "cart.empty", carts.Empty)
	auth.Delete("/user/cart/{id}", "cart.remove", carts.Remove)
	auth.Put("/user/cart/{id}/{newQuantity}", "cart.quantity", carts.UpdateQuantity)

	auth.Post("/user/order", "order.checkout", orders.Create)
	auth.Get("/user/order", "order.mine", orders.Mine)
	auth.Get("/user/order/{id}", "order.by_user", orders.ByUser, admin)
	auth.Get("/user/all-order", "order.all", orders.All, admin)
	auth.Put("/user/order/{id}", "order.status", orders.UpdateStatus, admin)
	auth.Get("/order/ws", "order.feed", orders.Feed)

	auth.Get("/user/wishlist", "user.wishlist", products.Wishlist)
	auth.Put("/user/edit-user", "user.edit", users.UpdateSelf)
	auth.Put("/user/save-address", "user.address", users.SaveAddress)
	auth.Get("/user/all-users", "user.list", users.All, admin)
	auth.Get("/user/{id}", "user.get", users.Get, admin)
	auth.Delete("/user/{id}", "user.delete", users.Delete, admin)
	auth.Put("/user/block-user/{id}", "user.block", users.Block, admin)
	auth.Put("/user/unblock-user/{id}", "user.unblock", users.Unblock, admin)

	auth.Put("/product/wishlist", "product.wishlist", products.ToggleWishlist)
	auth.Put("/product/rating", "product.rating", products.Rate)
	auth.Get("/product/recommenders", "product.recommenders", products.Recommend)
	auth.Post("/product", "product.create", products.Create, admin)
	auth.Put("/product/upload/{id}", "product.upload", products.Upload, admin)
	auth.Put("/product/{id}", "product.update", products.Update, admin)
	auth.Delete("/product/{id}", "product.delete", products.Delete, admin)

	auth.Post("/color", "color.create", colors.Create, admin)
	auth.Put("/color/{id}", "color.update", colors.Update, admin)
	auth.Delete("/color/{id}", "color.delete", colors.Delete, admin)

	auth.Get("/enquiry", "enquiry.list", enquiries.All, admin)
	auth.Get("/enquiry/{id}", "enquiry.get", enquiries.Get, admin)
	auth.Put("/enquiry/{id}", "enquiry.update", enquiries.Update, admin)
	auth.Delete("/enquiry/{id}", "enquiry.delete", enquiries.Delete, admin)
}
