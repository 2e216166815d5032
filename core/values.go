package core

// buildReportedValue type-checks raw against schema and returns the
// canonical PropertyValue to store. ENUM values arrive as the chosen
// option's name in raw.StringValue and are resolved to a schema index;
// STRUCT values arrive as a list of named sub-values and are validated
// recursively against schema.StructProperties.
func buildReportedValue(raw PropertyValue, schema PropertySchema) (PropertyValue, error) {
	if raw.DataType != schema.DataType {
		return PropertyValue{}, InvalidTransactionf("property %s has wrong type", schema.Name)
	}

	switch schema.DataType {
	case DataTypeEnum:
		idx, err := resolveEnumIndex(raw.StringValue, schema.EnumOptions)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{
			Name:     schema.Name,
			DataType: DataTypeEnum,
			EnumValue: int32(idx),
		}, nil

	case DataTypeStruct:
		members, err := buildStructValue(raw.StructValue, schema.StructProperties)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{
			Name:        schema.Name,
			DataType:    DataTypeStruct,
			StructValue: members,
		}, nil

	default:
		v := raw
		v.Name = schema.Name
		return v, nil
	}
}

// resolveEnumIndex matches name against options by position, failing
// cleanly on unknown names.
func resolveEnumIndex(name string, options []string) (int, error) {
	for i, opt := range options {
		if opt == name {
			return i, nil
		}
	}
	return 0, InvalidTransactionf("unknown enum option: %s", name)
}

// buildStructValue validates raw against schema members: every schema
// member must be present by name with a matching data type, and the
// lengths must match exactly. STRUCT nests recursively.
func buildStructValue(raw []PropertyValue, schema []PropertySchema) ([]PropertyValue, error) {
	if len(raw) != len(schema) {
		return nil, InvalidTransactionf("struct value length mismatch: got %d want %d", len(raw), len(schema))
	}

	byName := make(map[string]PropertyValue, len(raw))
	for _, v := range raw {
		byName[v.Name] = v
	}

	out := make([]PropertyValue, 0, len(schema))
	for _, member := range schema {
		v, ok := byName[member.Name]
		if !ok {
			return nil, InvalidTransactionf("struct missing member: %s", member.Name)
		}
		built, err := buildReportedValue(v, member)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}
