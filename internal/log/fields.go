package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldDate       = "date"
	FieldMonth      = "month"
	FieldEntryID    = "entry_id"
	FieldTemplateID = "template_id"
	FieldCategory   = "category"
	FieldMinutes    = "minutes"
	FieldKey        = "key"
	FieldQueue      = "queue"
	FieldExchange   = "exchange"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStore     = "store"
	ComponentBlobstore = "blobstore"
	ComponentReminder  = "reminder"
	ComponentNotify    = "notify"
	ComponentConfig    = "config"
)
