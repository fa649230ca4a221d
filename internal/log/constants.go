package log

const (
	KEY_APP_NAME       = "app"
	KEY_TAG            = "tag"
	KEY_PROCESS        = "process"
	KEY_CONFIG         = "config"
	KEY_REQUEST_ID     = "requestId"
	KEY_REQUEST_BODY   = "requestBody"
	KEY_REQUEST_HEADER = "requestHeader"
	KEY_REQUEST_HOST   = "host"
	KEY_REQUEST_IP     = "requesterIP"
	KEY_REQUEST_METHOD = "requestMethod"
	KEY_REQUEST_URI    = "requestURI"
	KEY_REQUEST_URL    = "requestURL"
	KEY_TRACE_ID       = "traceId"
	KEY_SPAN_ID        = "spanId"

	KEY_USER_ID         = "userId"
	KEY_SESSION_ID      = "sessionId"
	KEY_EMAIL           = "email"
	KEY_CART_ID         = "cartId"
	KEY_CART            = "cart"
	KEY_CART_ITEM_ID    = "cartItemId"
	KEY_CART_ITEMS      = "cartItems"
	KEY_CART_TOTALS     = "cartTotals"
	KEY_INVENTORY_ID    = "inventoryId"
	KEY_FULFILLMENT     = "fulfillmentType"
	KEY_QUANTITY        = "quantity"
	KEY_SETTINGS        = "storeSettings"
	KEY_FILTER          = "filter"
	KEY_PAGINATION      = "pagination"
	KEY_CACHE_KEY       = "cacheKey"
	KEY_JSON_CACHE      = "jsonCache"
	KEY_PATH_VALUES     = "pathValues"
	KEY_QUERY_PARAMS    = "queryParams"
	KEY_TOKEN           = "token"
	KEY_DB_URL          = "dbUrl"
	KEY_MERGED_QUANTITY = "mergedQuantity"
)
