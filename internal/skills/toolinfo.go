package skills

import (
	"github.com/cloudwego/eino/schema"
)

// ToolInfo converts a skill descriptor into the Eino tool schema advertised
// to the model alongside the conversation.
func (d *Descriptor) ToolInfo() *schema.ToolInfo {
	info := &schema.ToolInfo{
		Name: d.Name,
		Desc: d.Description,
	}

	if len(d.Parameters) > 0 {
		params := make(map[string]*schema.ParameterInfo, len(d.Parameters))
		for name, p := range d.Parameters {
			params[name] = paramSpecToInfo(p)
		}
		info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}

	return info
}

func paramSpecToInfo(p ParamSpec) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type:     paramTypeToDataType(p.Type),
		Desc:     p.Description,
		Required: p.Required,
		Enum:     p.Enum,
	}

	if p.Items != nil {
		info.ElemInfo = paramSpecToInfo(*p.Items)
	}
	if len(p.Properties) > 0 {
		sub := make(map[string]*schema.ParameterInfo, len(p.Properties))
		for name, sp := range p.Properties {
			sub[name] = paramSpecToInfo(sp)
		}
		info.SubParams = sub
	}

	return info
}

func paramTypeToDataType(t string) schema.DataType {
	switch t {
	case "string":
		return schema.String
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}
