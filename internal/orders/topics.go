package orders

const (
	TopicOrderCreated  = "order.created"
	TopicStockReserved = "order.stock.reserved"
	TopicStockRejected = "order.stock.rejected"
)

// Partition key = order_id so every event for one order stays ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
