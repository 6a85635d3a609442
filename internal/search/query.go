package search

const (
	// DefaultPageSize is the number of listings shown per page.
	DefaultPageSize = 10

	// MaxPage bounds page numbers so row offsets stay far from overflow.
	MaxPage = 1 << 20
)

type Op string

const (
	OpEq    Op = "eq"
	OpILike Op = "ilike" // case-insensitive substring match
	OpOr    Op = "or"    // any of Any
)

// Predicate is one condition of a QuerySpec. OpOr predicates carry their
// alternatives in Any and ignore Column/Value.
type Predicate struct {
	Column string
	Op     Op
	Value  any
	Any    []Predicate
}

func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

func ILike(column, substr string) Predicate {
	return Predicate{Column: column, Op: OpILike, Value: substr}
}

func Or(alternatives ...Predicate) Predicate {
	return Predicate{Op: OpOr, Any: alternatives}
}

type Order struct {
	Column string
	Desc   bool
}

// Range is an inclusive, zero-based row window.
type Range struct {
	From int
	To   int
}

// Limit is the number of rows the range covers.
func (r Range) Limit() int {
	return r.To - r.From + 1
}

// QuerySpec is what the storage layer needs to fetch one page: predicates
// combined with AND, the ordering, the row window and whether the exact total
// of the filtered set must be counted.
type QuerySpec struct {
	Table      string
	Predicates []Predicate
	Order      []Order
	Range      Range
	ExactCount bool
}

// Columns maps filter fields onto an entity's columns. An empty name means
// the entity has no such field and the filter is ignored for it.
type Columns struct {
	Title           string
	Description     string
	Location        string
	Category        string
	JobType         string
	ExperienceLevel string
	Salary          string
	Featured        string
	CreatedAt       string
}

// Entity describes one searchable directory.
type Entity struct {
	Name    string
	Table   string
	Columns Columns
	Base    []Predicate // always applied
}

var (
	Jobs = Entity{
		Name:  "jobs",
		Table: "jobs",
		Columns: Columns{
			Title:           "jobs.title",
			Description:     "jobs.description",
			Location:        "jobs.location",
			Category:        "jobs.category_id",
			JobType:         "jobs.job_type",
			ExperienceLevel: "jobs.experience_level",
			Salary:          "jobs.salary",
			Featured:        "jobs.is_featured",
			CreatedAt:       "jobs.created_at",
		},
	}

	Candidates = Entity{
		Name:  "candidates",
		Table: "profiles",
		Columns: Columns{
			Title:           "profiles.headline",
			Description:     "profiles.bio",
			Location:        "profiles.location",
			Category:        "profiles.category_id",
			JobType:         "profiles.job_type",
			ExperienceLevel: "profiles.experience_level",
			Salary:          "profiles.expected_salary",
			Featured:        "profiles.is_featured",
			CreatedAt:       "profiles.created_at",
		},
		Base: []Predicate{Eq("profiles.role", "candidate")},
	}

	Companies = Entity{
		Name:  "companies",
		Table: "companies",
		Columns: Columns{
			Title:       "companies.name",
			Description: "companies.description",
			Location:    "companies.location",
			Category:    "companies.industry",
			Featured:    "companies.is_verified",
			CreatedAt:   "companies.created_at",
		},
	}
)

// Build translates a FilterSet into a QuerySpec for the given entity.
func Build(e Entity, fs FilterSet, pageSize int) QuerySpec {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	c := e.Columns
	spec := QuerySpec{
		Table:      e.Table,
		ExactCount: true,
	}
	spec.Predicates = append(spec.Predicates, e.Base...)

	if fs.Keyword != "" && c.Title != "" {
		alternatives := []Predicate{ILike(c.Title, fs.Keyword)}
		if c.Description != "" {
			alternatives = append(alternatives, ILike(c.Description, fs.Keyword))
		}
		spec.Predicates = append(spec.Predicates, Or(alternatives...))
	}

	equal := func(column, value string) {
		if column != "" && isSet(value) {
			spec.Predicates = append(spec.Predicates, Eq(column, value))
		}
	}
	equal(c.Location, fs.Location)
	equal(c.Category, fs.CategoryID)
	equal(c.JobType, fs.JobType)
	equal(c.ExperienceLevel, fs.ExperienceLevel)

	// salary is stored as display text ("15-20 triệu"), so a range only
	// matches listings that mention one of its bounds
	if c.Salary != "" {
		if r := fs.SalaryRange; r != nil {
			spec.Predicates = append(spec.Predicates, Or(
				ILike(c.Salary, salaryLabel(r.Min)),
				ILike(c.Salary, salaryLabel(r.Max)),
			))
		} else if fs.SalaryText != "" {
			spec.Predicates = append(spec.Predicates, ILike(c.Salary, fs.SalaryText))
		}
	}

	if fs.FeaturedOnly && c.Featured != "" {
		spec.Predicates = append(spec.Predicates, Eq(c.Featured, true))
	}

	spec.Order = ordering(c, fs)
	spec.Range = PageRange(fs.Page, pageSize)

	return spec
}

func ordering(c Columns, fs FilterSet) []Order {
	featured := Order{Column: c.Featured, Desc: true}
	recent := Order{Column: c.CreatedAt, Desc: true}

	if c.Featured == "" {
		return []Order{recent}
	}

	switch fs.SortBy {
	case SortFeatured:
		return []Order{featured, recent}
	case SortRelevant:
		// fine ranking happens after the fetch, see Rerank
		if fs.Keyword != "" {
			return []Order{featured}
		}
		return []Order{featured, recent}
	default:
		return []Order{recent}
	}
}

// PageRange returns the inclusive row window of a 1-based page. Pages past
// MaxPage are treated as MaxPage.
func PageRange(page, pageSize int) Range {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	return Range{
		From: (page - 1) * pageSize,
		To:   page*pageSize - 1,
	}
}
