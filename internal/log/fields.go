package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldBackend     = "backend"
	FieldSource      = "source"
	FieldRecordCount = "record_count"
	FieldDropped     = "dropped"
	FieldTotalAmount = "total_amount"
	FieldBucket      = "bucket"
	FieldSpreadsheet = "spreadsheet_id"
	FieldSheet       = "sheet"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentIngest  = "ingest"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)
