package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyToken              = "token"
	KeyDbURL              = "dbUrl"
	KeyCacheKey           = "cacheKey"
	KeyUserID             = "userId"
	KeyProductID          = "productId"
	KeyCategoryID         = "categoryId"
	KeyCartItemID         = "cartItemId"
	KeyOrderID            = "orderId"
	KeyQuantity           = "quantity"
	KeyCartItems          = "cartItems"
	KeyOrderItems         = "orderItems"
	KeyOrders             = "orders"
	KeyTotalAmount        = "totalAmount"
	KeyRequest            = "request"
	KeyHeader             = "header"
	KeyBody               = "body"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyPathValues         = "pathValues"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
)
