package checkout

// Step is one screen of the checkout wizard. Order is fixed; success is
// terminal.
type Step string

const (
	StepProducts Step = "products"
	StepLocation Step = "location"
	StepDelivery Step = "delivery"
	StepPayment  Step = "payment"
	StepSuccess  Step = "success"
)

var stepOrder = []Step{StepProducts, StepLocation, StepDelivery, StepPayment, StepSuccess}

func stepIndex(s Step) int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// next returns the step after s, or s itself when terminal.
func next(s Step) Step {
	i := stepIndex(s)
	if i < 0 || i == len(stepOrder)-1 {
		return s
	}
	return stepOrder[i+1]
}

// prev returns the step before s, or s itself at the first step. success
// never goes back.
func prev(s Step) Step {
	i := stepIndex(s)
	if i <= 0 || s == StepSuccess {
		return s
	}
	return stepOrder[i-1]
}
