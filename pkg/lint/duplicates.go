// Package lint finds problems in JSON documents that a regular decoder hides.
package lint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duplicate is an object key defined more than once in the same object.
// Pointer is the JSON pointer of the object holding the key.
// FirstLine is where the key is first defined, Line where it is repeated.
type Duplicate struct {
	Pointer   string
	Key       string
	Line      int
	FirstLine int
}

func (d Duplicate) String() string {
	return fmt.Sprintf("line %d: key %q in %q already defined at line %d", d.Line, d.Key, d.Pointer, d.FirstLine)
}

// DuplicateKeys reports every repeated key in data, ordered by line.
// JSON is read as YAML so that node positions are available.
func DuplicateKeys(data []byte) ([]Duplicate, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	var res []Duplicate
	walk(&root, "", &res)

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Line < res[j].Line
	})
	return res, nil
}

func walk(node *yaml.Node, pointer string, res *[]Duplicate) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			walk(child, pointer, res)
		}

	case yaml.MappingNode:
		seen := make(map[string]int, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if first, ok := seen[key.Value]; ok {
				*res = append(*res, Duplicate{
					Pointer:   pointerOrRoot(pointer),
					Key:       key.Value,
					Line:      key.Line,
					FirstLine: first,
				})
			} else {
				seen[key.Value] = key.Line
			}
			walk(value, pointer+"/"+escape(key.Value), res)
		}

	case yaml.SequenceNode:
		for i, child := range node.Content {
			walk(child, pointer+"/"+strconv.Itoa(i), res)
		}
	}
}

func pointerOrRoot(pointer string) string {
	if pointer == "" {
		return "/"
	}
	return pointer
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(key string) string {
	return pointerEscaper.Replace(key)
}
