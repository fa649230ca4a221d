package constants

const (
	APP_STOREFRONT_SERVICE = "storefront-service"

	AUDIENCE_CUSTOMER = "customer"
)
