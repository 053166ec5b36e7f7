package backend

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps canonical backend names to constructors.
var Registry = map[string]func() Backend{
	"anthropic": func() Backend { return Anthropic{} },
	"gemini":    func() Backend { return Gemini{} },
	"openai":    func() Backend { return OpenAI{} },
	"ollama":    func() Backend { return Ollama{} },
}

// Get returns a backend instance by canonical name.
func Get(name string) (Backend, error) {
	ctor, ok := Registry[name]
	if !ok {
		names := make([]string, 0, len(Registry))
		for n := range Registry {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown backend %q, available: %s", name, strings.Join(names, ", "))
	}
	return ctor(), nil
}
