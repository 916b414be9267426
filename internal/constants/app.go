package constants

const (
	APP_PRODUCT_SERVICE = "product-service"
	APP_ORDER_SERVICE   = "order-service"
	APP_CART_SERVICE    = "cart-service"
	APP_MAIN_FARMSTAND  = "main farmstand"
	AUDIENCE_USER       = "audience-user"
)
