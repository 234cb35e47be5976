package sources

type Source struct {
	Name     string   // Derived from filename (without .yml extension)
	URL      string   `yaml:"url"`
	Settings Settings `yaml:"settings"`
}

type Settings struct {
	Enabled      bool `yaml:"enabled"`
	ExtractPages bool `yaml:"extract_pages"` // scrape linked article pages
	MaxEntries   int  `yaml:"max_entries"`   // 0 = no limit
	Timeout      int  `yaml:"timeout"`       // seconds
}
