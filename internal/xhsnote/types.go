package xhsnote

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// StatusSuccess marks a success envelope
	StatusSuccess = "success"
	// StatusError marks an error envelope
	StatusError = "error"

	// DefaultTitle is used when the upstream note has no title field
	DefaultTitle = "No Title"
	// CanonicalURLPrefix builds a note link when the upstream share link is missing
	CanonicalURLPrefix = "https://www.xiaohongshu.com/discovery/item/"
)

// FetchRequest identifies the note to fetch. Empty fields are treated as absent.
type FetchRequest struct {
	NoteID   string `json:"note_id,omitempty"`
	ShareURL string `json:"share_url,omitempty"`
}

// Result is the envelope returned to every caller. Exactly one of Data or
// Message is meaningful, selected by Status.
type Result struct {
	Status  string
	Data    *ResultData
	Message string

	// Err is the classified failure behind an error envelope
	Err *Error
}

// ResultData is the payload of a success envelope
type ResultData struct {
	Notes []NormalizedNote `json:"notes"`
	Total int              `json:"total"`
}

// MarshalJSON renders either {status,data} or {status,message}
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status == StatusSuccess {
		return json.Marshal(struct {
			Status string      `json:"status"`
			Data   *ResultData `json:"data"`
		}{r.Status, r.Data})
	}
	return json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{StatusError, r.Message})
}

// UnmarshalJSON accepts either envelope shape
func (r *Result) UnmarshalJSON(data []byte) error {
	var aux struct {
		Status  string      `json:"status"`
		Data    *ResultData `json:"data"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Status = aux.Status
	r.Data = aux.Data
	r.Message = aux.Message
	return nil
}

// OK reports whether r is a success envelope
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func successResult(notes []NormalizedNote) Result {
	return Result{
		Status: StatusSuccess,
		Data: &ResultData{
			Notes: notes,
			Total: len(notes),
		},
	}
}

func errorResult(err *Error) Result {
	return Result{
		Status:  StatusError,
		Message: err.Message,
		Err:     err,
	}
}

// NormalizedNote is the stable output shape of one note
type NormalizedNote struct {
	NoteID     string     `json:"note_id"`
	Title      string     `json:"title"`
	Author     Author     `json:"author"`
	Content    Content    `json:"content"`
	Statistics Statistics `json:"statistics"`
	Time       NoteTime   `json:"time"`
	URL        string     `json:"url"`
}

// Author represents the note's author
type Author struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// Content holds the note body. Video is never populated by this source.
type Content struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
	Video  *string  `json:"video"`
}

// Statistics holds interaction counters
type Statistics struct {
	Likes    int64 `json:"likes"`
	Collects int64 `json:"collects"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

// RawNote is one entry of data.note_list as returned upstream. Every field
// is optional and decoding never fails on a field of the wrong type.
type RawNote struct {
	ID             OptString    `json:"id"`
	Title          OptString    `json:"title"`
	Desc           OptString    `json:"desc"`
	User           rawUser      `json:"user"`
	ImagesList     rawImageList `json:"images_list"`
	LikedCount     Count        `json:"liked_count"`
	CollectedCount Count        `json:"collected_count"`
	CommentsCount  Count        `json:"comments_count"`
	SharedCount    Count        `json:"shared_count"`
	Time           NoteTime     `json:"time"`
	ShareInfo      rawShareInfo `json:"share_info"`
}

// UnmarshalJSON treats anything but an object as an empty note
func (n *RawNote) UnmarshalJSON(data []byte) error {
	type plain RawNote
	return decodeObject(data, (*plain)(n))
}

type rawUser struct {
	UserID   OptString `json:"userid"`
	Nickname OptString `json:"nickname"`
	Image    OptString `json:"image"`
}

func (u *rawUser) UnmarshalJSON(data []byte) error {
	type plain rawUser
	return decodeObject(data, (*plain)(u))
}

type rawImage struct {
	URL OptString `json:"url"`
}

func (i *rawImage) UnmarshalJSON(data []byte) error {
	type plain rawImage
	return decodeObject(data, (*plain)(i))
}

type rawImageList []rawImage

func (l *rawImageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var items []rawImage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

type rawShareInfo struct {
	Link OptString `json:"link"`
}

func (s *rawShareInfo) UnmarshalJSON(data []byte) error {
	type plain rawShareInfo
	return decodeObject(data, (*plain)(s))
}

// decodeObject decodes data into v only when data is a JSON object
func decodeObject(data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	return json.Unmarshal(data, v)
}

// OptString is a string field that remembers whether it was present.
// JSON numbers and booleans are kept as their literal text; null, objects
// and arrays count as absent.
type OptString struct {
	Value string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (s *OptString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = OptString{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = OptString{Value: v, Valid: true}
	case 'n', '{', '[':
	default:
		*s = OptString{Value: string(data), Valid: true}
	}
	return nil
}

// Or returns the value, or def when absent
func (s OptString) Or(def string) string {
	if !s.Valid {
		return def
	}
	return s.Value
}

// Count is an interaction counter. Upstream sends plain numbers, numeric
// strings or abbreviated forms like "1.2万", "3w" and "10+". Anything
// unparseable is 0.
type Count int64

// UnmarshalJSON implements json.Unmarshaler
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = 0
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = Count(ParseCount(v))
	case 'n', '{', '[', 't', 'f':
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err == nil {
			*c = Count(toInt64(f))
		}
	}
	return nil
}

var countUnits = []struct {
	suffix string
	factor float64
}{
	{"亿", 1e8},
	{"万", 1e4},
	{"w", 1e4},
	{"W", 1e4},
	{"k", 1e3},
	{"K", 1e3},
}

// ParseCount parses a displayed counter such as "1,234", "1.2万" or "10+".
// It returns 0 when s is not a number.
func ParseCount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	factor := 1.0
	for _, u := range countUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSuffix(s, u.suffix)
			factor = u.factor
			break
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return toInt64(f*factor + 0.5*sign(f))
}

// toInt64 truncates f, saturating at the int64 bounds
func toInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// NoteTime is the note's publish time exactly as upstream sent it, so a
// numeric timestamp stays a number. Absent or null encodes as "".
type NoteTime struct {
	raw json.RawMessage
}

// MarshalJSON implements json.Marshaler
func (t NoteTime) MarshalJSON() ([]byte, error) {
	if len(t.raw) == 0 {
		return []byte(`""`), nil
	}
	return t.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *NoteTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.raw = nil
		return nil
	}
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}

// String returns the time as display text. Strings are unquoted, other
// values keep their literal form.
func (t NoteTime) String() string {
	if len(t.raw) == 0 {
		return ""
	}
	var s string
	if t.raw[0] == '"' && json.Unmarshal(t.raw, &s) == nil {
		return s
	}
	return string(t.raw)
}
