package model

// CallbackResult is the canonical shape of a task-execution callback,
// whatever casing or value encoding the sender used.
type CallbackResult struct {
	Success       bool
	RequestID     string
	Repository    string
	BranchName    string
	Iterations    int
	MaxIterations int
	ExitCode      int
	Output        string
	Error         string
	Duration      string
	Timestamp     string
}
