package cfg

type Cfg struct {
	// Harvest configuration
	FeedURL    string
	SourcesDir string
	MaxEntries int
	Timeout    int

	// Page extraction
	ExtractPages bool

	// Storage configuration
	DataDir string
	DBFile  string

	// Chart output
	ChartsDir string

	// HTTP mode
	Serve bool
	Port  string

	// Scheduling
	Interval int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
