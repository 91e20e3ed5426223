package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TimestampLayout is the ISO-8601 form used for createdAt/updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	DefaultTitle       = "Untitled Task"
	DefaultDescription = "No description provided"
)

type Task struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Implementation string `json:"implementation"`
	CodeSnippet    string `json:"codeSnippet"`
	Completed      bool   `json:"completed"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

type TaskList []Task

type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type Filter struct {
	Query  string    `json:"query"`
	Status Status    `json:"status"`
	Sort   SortOrder `json:"sort"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidTimestamp reports whether value parses as an RFC 3339 timestamp.
func ValidTimestamp(value string) bool {
	_, err := time.Parse(time.RFC3339, value)
	return err == nil
}

func (l TaskList) Index(id string) int {
	for i, task := range l {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func (l TaskList) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, task := range l {
		ids = append(ids, task.ID)
	}
	return ids
}

func (l TaskList) CompletedIDs() []string {
	ids := []string{}
	for _, task := range l {
		if task.Completed {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// Clone returns a copy whose backing array is not shared with l.
func (l TaskList) Clone() TaskList {
	if l == nil {
		return nil
	}
	out := make(TaskList, len(l))
	copy(out, l)
	return out
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task %s: title is required", t.ID)
	}
	if t.CreatedAt == "" {
		return fmt.Errorf("task %s: createdAt is required", t.ID)
	}
	return nil
}

func (l TaskList) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for i, task := range l {
		if err := task.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if _, ok := seen[task.ID]; ok {
			return fmt.Errorf("task %d: duplicate id %q", i, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}

// Progress returns the rounded percentage of completed tasks.
func (l TaskList) Progress() int {
	if len(l) == 0 {
		return 0
	}
	completed := 0
	for _, task := range l {
		if task.Completed {
			completed++
		}
	}
	return (completed*200 + len(l)) / (2 * len(l))
}

// Apply returns the tasks matching filter, sorted by title. l is not modified.
func (l TaskList) Apply(filter Filter) TaskList {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	result := make(TaskList, 0, len(l))
	for _, task := range l {
		switch NormalizeStatus(string(filter.Status)) {
		case StatusActive:
			if task.Completed {
				continue
			}
		case StatusCompleted:
			if !task.Completed {
				continue
			}
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(task.Title), query) &&
			!strings.Contains(strings.ToLower(task.Description), query) {
			continue
		}
		result = append(result, task)
	}

	titles := collate.New(language.English, collate.IgnoreCase)
	desc := NormalizeSort(string(filter.Sort)) == SortDesc
	sort.SliceStable(result, func(i, j int) bool {
		cmp := titles.CompareString(result[i].Title, result[j].Title)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return result
}

func NormalizeStatus(value string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusActive:
		return StatusActive
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusAll
	}
}

func NormalizeSort(value string) SortOrder {
	if SortOrder(strings.ToLower(strings.TrimSpace(value))) == SortDesc {
		return SortDesc
	}
	return SortAsc
}
