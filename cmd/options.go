package cmd

// Options holds the shared command-line options for the engage CLI.
type Options struct {
	ConfigPath    string
	Owner         string
	Repo          string
	ProjectNumber int
	IssueNumber   int
	ProjectColumn string
	Format        string
	Verbosity     int
	Workers       int
	ApplyScores   bool
	DryRun        bool
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Format: "table",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfigPath sets an explicit config file path.
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.ConfigPath = path
	}
}

// WithOwner sets the repository or project owner.
func WithOwner(owner string) Option {
	return func(o *Options) {
		o.Owner = owner
	}
}

// WithRepo sets the repository name.
func WithRepo(repo string) Option {
	return func(o *Options) {
		o.Repo = repo
	}
}

// WithProjectNumber sets the project board to score.
func WithProjectNumber(number int) Option {
	return func(o *Options) {
		o.ProjectNumber = number
	}
}

// WithIssueNumber sets a single issue to score.
func WithIssueNumber(number int) Option {
	return func(o *Options) {
		o.IssueNumber = number
	}
}

// WithProjectColumn sets the project field that receives scores.
func WithProjectColumn(column string) Option {
	return func(o *Options) {
		o.ProjectColumn = column
	}
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(workers int) Option {
	return func(o *Options) {
		o.Workers = workers
	}
}

// WithApplyScores enables writing scores back to the project board.
func WithApplyScores(apply bool) Option {
	return func(o *Options) {
		o.ApplyScores = apply
	}
}

// WithDryRun logs intended project updates without mutating anything.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}
