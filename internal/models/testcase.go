package models

// TestCase is one generated test returned by the backend's test-generation
// endpoint. The shape is a passthrough; huq only displays it.
type TestCase struct {
	ID          string
	Name        string
	Description string
	Steps       []TestStep
	XrayPath    string
}

// TestStep is a single action/result pair within a generated test case.
type TestStep struct {
	Action   string
	Expected string
}
