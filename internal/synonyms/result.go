package synonyms

// Entry is one headword and its synonyms.
type Entry struct {
	Headword string   `json:"headword"`
	Synonyms []string `json:"synonyms"`
}

// HasHeadword reports whether the entry was keyed by a real heading. Synonym
// lines that appear before the first heading are collected under an absent
// (empty) headword.
func (e Entry) HasHeadword() bool {
	return e.Headword != ""
}

// Result is an insertion-ordered mapping from headword to synonyms.
type Result struct {
	entries []Entry
	index   map[string]int

	Stats Stats
}

// Stats counts what the scanner saw. Used for logging only.
type Stats struct {
	Elements     int // Structural elements visited
	NonParagraph int // Tables, section breaks and other skipped elements
	Paragraphs   int
	HeaderRuns   int // Runs discarded before the divider, divider included
	Skipped      int // Body paragraphs dropped as blank or comment
	Headwords    int // Heading paragraphs seen in the body
	Assignments  int // Synonym lists written, including replacements
	Replaced     int // Assignments that overwrote an earlier list
	Orphans      int // Assignments made before any heading
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{index: make(map[string]int)}
}

// Set replaces the synonym list for headword. A new headword is appended; an
// existing one keeps its original position. It reports whether a previous
// list was replaced.
func (r *Result) Set(headword string, syns []string) bool {
	if i, ok := r.index[headword]; ok {
		r.entries[i].Synonyms = syns
		return true
	}
	r.index[headword] = len(r.entries)
	r.entries = append(r.entries, Entry{Headword: headword, Synonyms: syns})
	return false
}

// Get returns the synonyms for headword.
func (r *Result) Get(headword string) ([]string, bool) {
	i, ok := r.index[headword]
	if !ok {
		return nil, false
	}
	return r.entries[i].Synonyms, true
}

// Len returns the number of headwords.
func (r *Result) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries in insertion order.
func (r *Result) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Headwords returns the headwords in insertion order.
func (r *Result) Headwords() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Headword)
	}
	return out
}
