package tools

import "github.com/nhle/todo-extension/internal/host"

func str(name, description string) host.Param {
	return host.Param{Name: name, Type: host.ParamString, Description: description}
}

func num(name, description string) host.Param {
	return host.Param{Name: name, Type: host.ParamNumber, Description: description}
}

func boolean(name, description string) host.Param {
	return host.Param{Name: name, Type: host.ParamBoolean, Description: description}
}

func required(p host.Param) host.Param {
	p.Required = true
	return p
}

func nullable(p host.Param) host.Param {
	p.Nullable = true
	return p
}

func oneOf(p host.Param, values ...string) host.Param {
	p.Enum = values
	return p
}

func rules(p host.Param, tags string) host.Param {
	p.Rules = tags
	return p
}

func pageParams() []host.Param {
	return []host.Param{
		rules(num("limit", "Maximum number of results (default 50)"), "min=1,max=1000"),
		rules(num("offset", "Number of results to skip"), "min=0"),
	}
}

// deleted is the data returned by every delete tool.
type deleted struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
