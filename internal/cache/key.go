package cache

const (
	KeyProducts   = "farmstand:products"
	KeyProduct    = "farmstand:products:%s"
	KeyCategories = "farmstand:categories"
	KeyFarms      = "farmstand:farms"
)
