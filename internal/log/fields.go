package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldDocumentID   = "document_id"
	FieldSourceFile   = "source_file"
	FieldFormat       = "format"
	FieldTxCount      = "tx_count"
	FieldLine         = "line"
	FieldCategory     = "category"
	FieldCounterparty = "counterparty"
	FieldAmount       = "amount"
	FieldChunkCount   = "chunk_count"
	FieldQuestion     = "question"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentIngest     = "ingest"
	ComponentLoader     = "loader"
	ComponentExtract    = "extract"
	ComponentCategorize = "categorize"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentRAG        = "rag"
	ComponentCache      = "cache"
	ComponentRateLimit  = "rate_limit"
	ComponentTrace      = "trace"
)

// Operations defines standard operation names
const (
	OpLoad       = "load"
	OpParse      = "parse"
	OpCategorize = "categorize"
	OpStore      = "store"
	OpExport     = "export"
	OpIndex      = "index"
	OpEmbed      = "embed"
	OpRetrieve   = "retrieve"
	OpAnswer     = "answer"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
