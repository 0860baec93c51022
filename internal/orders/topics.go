package orders

import "strconv"

const TopicOrderFulfilled = "order.fulfilled"

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID int) []byte { return []byte(strconv.Itoa(orderID)) }
