package ftl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lus/fluent.go/fluent/parser/ast"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeKitchenSink(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "kitchen_sink.ftl"))
	require.NoError(t, err)

	res, parseErrs := Parse(string(raw))
	require.Empty(t, parseErrs)

	g := goldie.New(t)
	g.Assert(t, "kitchen_sink", []byte(Serialize(res)))
}

func TestSerializeRoundTripIdempotent(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "kitchen_sink.ftl"))
	require.NoError(t, err)

	res, _ := Parse(string(raw))
	once := Serialize(res)

	reparsed, parseErrs := Parse(once)
	require.Empty(t, parseErrs)
	assert.Equal(t, once, Serialize(reparsed))
}

func TestSerializeEmptyResource(t *testing.T) {
	assert.Equal(t, "", Serialize(EmptyResource()))
}

func TestSerializeEndsWithSingleNewline(t *testing.T) {
	res, _ := Parse("a = A\n\n\nb = B\n\n")
	out := Serialize(res)
	assert.Equal(t, "a = A\n\nb = B\n", out)
}

func TestSerializeJunkVerbatim(t *testing.T) {
	src := "good = Fine\n\nthis is not ftl ???\n"
	res, parseErrs := Parse(src)
	require.NotEmpty(t, parseErrs)

	out := Serialize(res)
	assert.Contains(t, out, "good = Fine")
	assert.Contains(t, out, "this is not ftl ???")
}

func TestParseSplicesJunkInDocumentOrder(t *testing.T) {
	src := "a = A\n\n=broken\n\nb = B\n"
	res, parseErrs := Parse(src)
	require.NotEmpty(t, parseErrs)
	require.Len(t, res.Body, 3)

	junk, ok := res.Body[1].(*ast.Junk)
	require.True(t, ok, "broken region must sit between its neighbors")
	assert.Equal(t, "=broken\n", junk.Content)

	assert.Equal(t, src, Serialize(res))
}

func TestParseJunkAtEndOfFile(t *testing.T) {
	src := "a = A\n\ntrailing garbage"
	res, parseErrs := Parse(src)
	require.NotEmpty(t, parseErrs)

	junk, ok := res.Body[len(res.Body)-1].(*ast.Junk)
	require.True(t, ok)
	assert.Equal(t, "trailing garbage\n", junk.Content)
}

func TestParseDropsNilRecoveryEntries(t *testing.T) {
	// This shape makes the parser leak a typed-nil entry while
	// recovering; the body must stay free of nil nodes and the broken
	// line must survive as junk.
	src := "### top\n\nb = B\n# note\na-x = X\n\n## A\n\na_this = T\n\n=junk here\n\n## A\n\na-y = Y\n"
	res, parseErrs := Parse(src)
	require.NotEmpty(t, parseErrs)

	for i, entry := range res.Body {
		if msg, ok := entry.(*ast.Message); ok {
			require.NotNil(t, msg, "body[%d] is a nil message", i)
			require.NotNil(t, msg.ID, "body[%d] has a nil ID", i)
		}
	}

	out := Serialize(res)
	assert.Contains(t, out, "=junk here")
	assert.Contains(t, out, "a-y = Y")
}

func TestEntryKeyNilEntries(t *testing.T) {
	var msg *ast.Message
	_, ok := EntryKey(msg)
	assert.False(t, ok)

	var term *ast.Term
	_, ok = EntryKey(term)
	assert.False(t, ok)

	_, ok = EntryKey(nil)
	assert.False(t, ok)
}

func TestSerializeCommentStaysAttached(t *testing.T) {
	src := "# A comment.\nkey = Value\n"
	res, parseErrs := Parse(src)
	require.Empty(t, parseErrs)
	require.Len(t, res.Body, 1)

	msg, ok := res.Body[0].(*ast.Message)
	require.True(t, ok)
	require.NotNil(t, msg.Comment)

	assert.Equal(t, src, Serialize(res))
}

func TestEntryKey(t *testing.T) {
	res, parseErrs := Parse("msg = M\n-term = T\n")
	require.Empty(t, parseErrs)

	assert.Equal(t, []string{"msg", "-term"}, Keys(res))

	set := KeySet(res)
	assert.Contains(t, set, "msg")
	assert.Contains(t, set, "-term")
}

func TestEntryKeyNonKeyedEntries(t *testing.T) {
	res, parseErrs := Parse("## Section\n\nmsg = M\n")
	require.Empty(t, parseErrs)

	_, ok := EntryKey(res.Body[0])
	assert.False(t, ok)
	assert.Equal(t, []string{"msg"}, Keys(res))
}

func TestVariablesSimple(t *testing.T) {
	res, parseErrs := Parse("greeting = Hello { $name }\n")
	require.Empty(t, parseErrs)

	vars := KeyVariables(res)["greeting"]
	assert.Equal(t, map[string]struct{}{"name": {}}, vars)
}

func TestVariablesSelectExpression(t *testing.T) {
	src := "emails =\n" +
		"    { $count ->\n" +
		"        [one] One from { $sender }\n" +
		"       *[other] { $count } emails\n" +
		"    }\n"
	res, parseErrs := Parse(src)
	require.Empty(t, parseErrs)

	vars := KeyVariables(res)["emails"]
	assert.Contains(t, vars, "count")
	assert.Contains(t, vars, "sender")
}

func TestVariablesFunctionArguments(t *testing.T) {
	res, parseErrs := Parse("ratio = { NUMBER($value, minimumFractionDigits: 2) }\n")
	require.Empty(t, parseErrs)

	vars := KeyVariables(res)["ratio"]
	assert.Equal(t, map[string]struct{}{"value": {}}, vars)
}

func TestVariablesNestedPlaceable(t *testing.T) {
	res, parseErrs := Parse("nested = { { $inner } }\n")
	require.Empty(t, parseErrs)

	vars := KeyVariables(res)["nested"]
	assert.Contains(t, vars, "inner")
}

func TestVariablesIncludeAttributes(t *testing.T) {
	src := "login = Log in\n    .title = Welcome { $user }\n"
	res, parseErrs := Parse(src)
	require.Empty(t, parseErrs)

	vars := KeyVariables(res)["login"]
	assert.Contains(t, vars, "user")
}

func TestNewMessageShape(t *testing.T) {
	msg := NewMessage("usa_state-alabama", "Alabama", []string{"region"})
	out := Serialize(NewResource(msg))
	assert.Equal(t, "usa_state-alabama = Alabama { $region }\n", out)
}

func TestParseFileMissing(t *testing.T) {
	res, parseErrs, err := ParseFile(filepath.Join(t.TempDir(), "absent.ftl"))
	require.NoError(t, err)
	assert.Empty(t, parseErrs)
	assert.Empty(t, res.Body)
}

func TestParseRecoversAroundJunk(t *testing.T) {
	src := "ok = Fine\n\n=broken\n\nalso_ok = Good\n"
	res, parseErrs := Parse(src)
	require.NotEmpty(t, parseErrs)

	assert.Equal(t, []string{"ok", "also_ok"}, Keys(res))
}
