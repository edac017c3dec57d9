package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(recs []FieldRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}
	return out
}

func TestFlatten_PreOrderPaths(t *testing.T) {
	doc := Object(
		Field("a", Object(
			Field("b", Scalar(int64(1))),
			Field("c", Array(Scalar(int64(2)), Scalar(int64(3)))),
		)),
	)
	recs, err := FlattenRecords(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []FieldRecord{
		{Path: "a.b", Type: TypeNumeric, Example: int64(1)},
		{Path: "a.c[0]", Type: TypeNumeric, Example: int64(2)},
		{Path: "a.c[1]", Type: TypeNumeric, Example: int64(3)},
	}, recs)
}

func TestFlatten_Prefix(t *testing.T) {
	recs, err := Flatten(Object(Field("x", Scalar("v"))), "root", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"root.x"}, paths(recs))

	recs, err = Flatten(Array(Scalar(true)), "list", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []FieldRecord{{Path: "list[0]", Type: TypeBoolean, Example: true}}, recs)
}

func TestFlatten_NullLeafAndEmptyContainers(t *testing.T) {
	doc := Object(
		Field("gone", Scalar(nil)),
		Field("none", Object()),
		Field("list", Array()),
	)
	recs, err := FlattenRecords(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []FieldRecord{{Path: "gone", Type: TypeUnknown, Example: NotAvailable}}, recs)
}

func TestFlattenRecords_TopLevelArrayFirstWins(t *testing.T) {
	doc := Array(
		Object(Field("x", Scalar(int64(1)))),
		Object(Field("x", Scalar("two"))),
		Object(Field("y", Scalar(int64(3)))),
	)
	recs, err := FlattenRecords(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []FieldRecord{
		{Path: "x", Type: TypeNumeric, Example: int64(1)},
		{Path: "y", Type: TypeNumeric, Example: int64(3)},
	}, recs)
}

func TestFlattenRecords_TopLevelArrayOfScalars(t *testing.T) {
	recs, err := FlattenRecords(Array(Scalar("a"), Scalar("b")), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []FieldRecord{{Path: "", Type: TypeString, Example: "a"}}, recs)
}

func TestFlattenRecords_NestedArraysAreNotDeduplicated(t *testing.T) {
	doc := Object(Field("items", Array(
		Object(Field("x", Scalar(int64(1)))),
		Object(Field("x", Scalar(int64(2)))),
	)))
	recs, err := FlattenRecords(doc, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"items[0].x", "items[1].x"}, paths(recs))
}

func TestFlattenRecords_Granularity(t *testing.T) {
	doc := Object(
		Field("id", Scalar(int64(1))),
		Field("score", Scalar(2.5)),
		Field("tags", Array(Scalar("a"), Scalar("b"))),
	)
	opt := DefaultOptions()
	opt.Granularity = Fine
	recs, err := FlattenRecords(doc, opt)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, TypeInteger, recs[0].Type)
	assert.Equal(t, TypeFloat, recs[1].Type)
	assert.Equal(t, TypeString, recs[2].Type)
	assert.Equal(t, "tags[1]", recs[3].Path)
}

func TestFlattenRecords_DepthLimit(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxDepth = 2

	_, err := FlattenRecords(Object(Field("a", Object(Field("b", Scalar(int64(1)))))), opt)
	require.NoError(t, err)

	_, err = FlattenRecords(Object(Field("a", Object(Field("b", Object(Field("c", Scalar(int64(1)))))))), opt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDepthExceeded))
	var de *DepthError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "a.b", de.Path)
	assert.Equal(t, 2, de.Limit)
}

func TestFlattenRecords_DepthLimitCountsRootArray(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxDepth = 1

	recs, err := FlattenRecords(Array(Scalar(int64(1)), Scalar(int64(2))), opt)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = FlattenRecords(Array(Object(Field("x", Scalar(int64(1))))), opt)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestFlattenRecords_Malformed(t *testing.T) {
	tests := map[string]*Node{
		"nil root":       nil,
		"unknown kind":   {Kind: NodeKind(42)},
		"nil member":     Object(Field("a", nil)),
		"ambiguous path": Object(Field("a.b", Scalar(int64(1))), Field("a", Object(Field("b", Scalar(int64(2)))))),
		"duplicate key":  Object(Field("k", Scalar("x")), Field("k", Scalar("y"))),
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FlattenRecords(doc, DefaultOptions())
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestFromValue(t *testing.T) {
	n, err := FromValue(map[string]any{
		"b": []any{1.5, nil},
		"a": "x",
	})
	require.NoError(t, err)
	recs, err := FlattenRecords(n, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b[0]", "b[1]"}, paths(recs))

	_, err = FromValue(map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrMalformedInput)
}
