package orders

type Status string

const (
	StatusCreated       Status = "CREATED"
	StatusStockReserved Status = "STOCK_RESERVED"
	StatusDispatched    Status = "DISPATCHED" // with a driver or at the station
	StatusCompleted     Status = "COMPLETED"
	StatusFailed        Status = "FAILED"
)

var validNext = map[Status]map[Status]bool{
	StatusCreated:       {StatusStockReserved: true, StatusFailed: true},
	StatusStockReserved: {StatusDispatched: true, StatusFailed: true},
	StatusDispatched:    {StatusCompleted: true},
	StatusCompleted:     {},
	StatusFailed:        {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
