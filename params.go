package easyHttp

import (
	"strings"

	"github.com/valyala/fasthttp"
)

type paramKind int

const (
	paramScalar paramKind = iota
	paramList
	paramMap
)

// ParamValue is a scalar, an ordered list of scalars or an ordered
// mapping of subkeys to scalars.
type ParamValue struct {
	kind   paramKind
	scalar string
	list   []string
	pairs  []Param
}

// Param is one key of a Params set.
type Param struct {
	Key   string
	Value ParamValue
}

// Params is an ordered set of request parameters. Order is kept when
// encoding.
type Params []Param

func Scalar(v string) ParamValue {
	return ParamValue{kind: paramScalar, scalar: v}
}

func List(values ...string) ParamValue {
	return ParamValue{kind: paramList, list: values}
}

// Map builds a nested value from subkey/value pairs given in order,
// e.g. Map("d", "2", "e", "3"). A trailing subkey without value gets an
// empty value.
func Map(kv ...string) ParamValue {
	pairs := make([]Param, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		p := Param{Key: kv[i]}
		if i+1 < len(kv) {
			p.Value = Scalar(kv[i+1])
		} else {
			p.Value = Scalar("")
		}
		pairs = append(pairs, p)
	}
	return ParamValue{kind: paramMap, pairs: pairs}
}

// Add appends key with value v and returns the extended set.
func (p Params) Add(key string, v ParamValue) Params {
	return append(p, Param{Key: key, Value: v})
}

// Encode renders p as a form-encoded string. Keys, subkeys and values are
// escaped independently, a space becomes '+', and the brackets of nested
// keys are kept literal:
//
//	a=1&b=x&b=y&c[d]=2
func (p Params) Encode() string {
	fragments := make([]string, 0, len(p))
	for _, param := range p {
		key := quoteArg(param.Key)
		switch param.Value.kind {
		case paramMap:
			for _, sub := range param.Value.pairs {
				fragments = append(fragments, key+"["+quoteArg(sub.Key)+"]="+quoteArg(sub.Value.scalar))
			}
		case paramList:
			for _, v := range param.Value.list {
				fragments = append(fragments, key+"="+quoteArg(v))
			}
		default:
			fragments = append(fragments, key+"="+quoteArg(param.Value.scalar))
		}
	}
	return strings.Join(fragments, "&")
}

func quoteArg(s string) string {
	return string(fasthttp.AppendQuotedArg(nil, []byte(s)))
}
