package core

import "testing"

func TestResolveEnumIndex(t *testing.T) {
	idx, err := resolveEnumIndex("USED", []string{"NEW", "USED", "REFURBISHED"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("idx = %d, want 1", idx)
	}
}

func TestResolveEnumIndexUnknown(t *testing.T) {
	_, err := resolveEnumIndex("MISSING", []string{"NEW", "USED"})
	if !IsInvalidTransaction(err) {
		t.Fatalf("want InvalidTransactionError, got %v", err)
	}
}

func TestBuildReportedValueNestedStruct(t *testing.T) {
	schema := PropertySchema{
		Name:     "box",
		DataType: DataTypeStruct,
		StructProperties: []PropertySchema{
			{Name: "inner", DataType: DataTypeStruct, StructProperties: []PropertySchema{
				{Name: "flag", DataType: DataTypeBoolean},
			}},
		},
	}
	raw := PropertyValue{
		Name:     "box",
		DataType: DataTypeStruct,
		StructValue: []PropertyValue{
			{Name: "inner", DataType: DataTypeStruct, StructValue: []PropertyValue{
				{Name: "flag", DataType: DataTypeBoolean, BoolValue: true},
			}},
		},
	}

	built, err := buildReportedValue(raw, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(built.StructValue) != 1 || built.StructValue[0].Name != "inner" {
		t.Fatalf("built = %+v", built)
	}
	inner := built.StructValue[0]
	if len(inner.StructValue) != 1 || inner.StructValue[0].BoolValue != true {
		t.Fatalf("inner = %+v", inner)
	}
}

func TestBuildReportedValueWrongTopLevelType(t *testing.T) {
	schema := PropertySchema{Name: "color", DataType: DataTypeString}
	raw := PropertyValue{Name: "color", DataType: DataTypeNumber, NumberValue: 1}

	_, err := buildReportedValue(raw, schema)
	if !IsInvalidTransaction(err) {
		t.Fatalf("want InvalidTransactionError, got %v", err)
	}
}
