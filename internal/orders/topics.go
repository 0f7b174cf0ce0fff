package orders

const (
	TopicOrderSubmitted = "storefront.order.submitted"
	TopicOrderFailed    = "storefront.order.failed"
	TopicOrderStatus    = "storefront.order.status"
)

// Partition key = receipt id, so all events of one order keep their order.
func PartitionKey(receiptID string) []byte { return []byte(receiptID) }
