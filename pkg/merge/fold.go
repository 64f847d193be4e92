package merge

import (
	"fmt"
)

// Fold copies the paths, components.schemas and components.securitySchemes
// of fragment into dst.
// Keys are overwritten one level deep: a colliding key is replaced with the
// fragment's value as a whole, its nested content is never merged.
// Absent or null sections are ignored. Containers missing in dst are created.
// Values are shared with fragment, not copied.
func Fold(dst, fragment Document) error {
	if dst == nil {
		return fmt.Errorf("destination: %w", ErrNotObject)
	}

	paths, err := section(fragment, KeyPaths)
	if err != nil {
		return err
	}
	if paths != nil {
		target, err := container(dst, KeyPaths)
		if err != nil {
			return err
		}
		assign(target, paths)
	}

	components, err := section(fragment, KeyComponents)
	if err != nil || components == nil {
		return err
	}

	for _, key := range []string{KeySchemas, KeySecuritySchemes} {
		src, err := section(components, key)
		if err != nil {
			return fmt.Errorf("%s.%w", KeyComponents, err)
		}
		if src == nil {
			continue
		}

		dstComponents, err := container(dst, KeyComponents)
		if err != nil {
			return err
		}
		target, err := container(dstComponents, key)
		if err != nil {
			return fmt.Errorf("%s.%w", KeyComponents, err)
		}
		assign(target, src)
	}

	return nil
}

// section returns doc[key] as an object, nil when it is absent or null.
func section(doc map[string]any, key string) (map[string]any, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, nil
	}

	res, ok := asObject(value)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotObject)
	}
	return res, nil
}

// container returns doc[key] as an object, creating it when missing.
func container(doc map[string]any, key string) (map[string]any, error) {
	res, err := section(doc, key)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = make(map[string]any)
		doc[key] = res
	}
	return res, nil
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Document:
		return v, true
	}
	return nil, false
}

func assign(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
