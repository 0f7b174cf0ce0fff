package orders

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusPaid      Status = "PAID"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

var validNext = map[Status]map[Status]bool{
	StatusSubmitted: {StatusPaid: true, StatusFailed: true},
	StatusPaid:      {StatusCompleted: true, StatusFailed: true},
	StatusCompleted: {},
	StatusFailed:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
