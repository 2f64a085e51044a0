package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedOutline 模型返回的大纲结构不完整
var ErrMalformedOutline = errors.New("malformed outline")

// OutlineKeys 大纲文档的全部顶层字段，顺序即序列化顺序
var OutlineKeys = []string{"title", "description", "duration", "modules", "sources", "notes", "review_message"}

// DraftRequiredKeys 首次生成大纲时模型必须返回的字段
var DraftRequiredKeys = []string{"title", "description", "modules"}

// EditRequiredKeys 修改大纲时必须原样保留全部字段，缺任何一个都按格式错误处理
var EditRequiredKeys = OutlineKeys

// Outline 课程大纲（待用户确认的课程草稿）
// swagger:model
type Outline struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Duration      LooseString     `json:"duration"`
	Modules       []ModuleDraft   `json:"modules"`
	Sources       []OutlineSource `json:"sources"`
	Notes         LooseString     `json:"notes"`
	ReviewMessage LooseString     `json:"review_message"`
}

type ModuleDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rationale   string   `json:"rationale"`
	Topics      []string `json:"topics"`
}

// OutlineSource 参考资料。模型有时只返回字符串，此时写入 Title
type OutlineSource struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *OutlineSource) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		s.Title = text
		return nil
	}
	type plain OutlineSource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = OutlineSource(p)
	return nil
}

// LooseString 接受字符串、数字或字符串数组（按行拼接）
type LooseString string

func (l *LooseString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = LooseString(text)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*l = LooseString(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*l = LooseString(strings.Join(lines, "\n"))
		return nil
	}

	return fmt.Errorf("cannot decode %s as text", trimmed)
}

func (l LooseString) String() string { return string(l) }

// Normalize 保证切片字段序列化为 [] 而不是 null
func (o *Outline) Normalize() {
	if o.Modules == nil {
		o.Modules = []ModuleDraft{}
	}
	if o.Sources == nil {
		o.Sources = []OutlineSource{}
	}
	for i := range o.Modules {
		if o.Modules[i].Topics == nil {
			o.Modules[i].Topics = []string{}
		}
	}
}

// Validate 检查大纲至少包含标题和一个带标题的模块
func (o *Outline) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrMalformedOutline)
	}
	if len(o.Modules) == 0 {
		return fmt.Errorf("%w: no modules", ErrMalformedOutline)
	}
	for i, m := range o.Modules {
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("%w: module %d has no title", ErrMalformedOutline, i+1)
		}
	}
	return nil
}

// ParseOutline 把模型返回的 JSON 文档解析为大纲，缺少 required 中任一字段即视为格式错误
func ParseOutline(doc json.RawMessage, required []string) (*Outline, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutline, err)
	}

	// 兼容 {"outline": {...}} 这种多包一层的返回
	if inner, ok := fields["outline"]; ok && len(fields) == 1 {
		return ParseOutline(inner, required)
	}

	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedOutline, key)
		}
	}
	if raw, ok := fields["modules"]; ok {
		if t := strings.TrimSpace(string(raw)); !strings.HasPrefix(t, "[") {
			return nil, fmt.Errorf("%w: modules is not a list", ErrMalformedOutline)
		}
	}

	var outline Outline
	if err := json.Unmarshal(doc, &outline); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutline, err)
	}
	if err := outline.Validate(); err != nil {
		return nil, err
	}
	outline.Normalize()
	return &outline, nil
}
