package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldPlan      = "plan"
	FieldRunID     = "run_id"
	FieldYear      = "year"
	FieldYears     = "years"
	FieldAccount   = "account"
	FieldAmount    = "amount"
	FieldNetWorth  = "net_worth"
	FieldStrategy  = "strategy"
	FieldDuration  = "duration_ms"
	FieldQueue     = "queue"
	FieldExchange  = "exchange"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentForecast = "forecast"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpRun      = "run"
	OpSave     = "save"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRun adds forecast run fields
func (f LogFields) WithRun(plan string, runID int64) LogFields {
	f[FieldPlan] = plan
	f[FieldRunID] = runID
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
