package types

import (
	"fmt"
	"strings"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	if typesIn == nil {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindNever:
		return "!"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindStr:
		return "str"
	case KindInt:
		return formatIntType(tt.Width, true)
	case KindUint:
		return formatIntType(tt.Width, false)
	case KindFloat:
		return formatFloatType(tt.Width)
	case KindPointer:
		if tt.Mutable {
			return "*mut " + labelDepth(typesIn, tt.Elem, depth+1)
		}
		return "*const " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindReference:
		if tt.Mutable {
			return "&mut " + labelDepth(typesIn, tt.Elem, depth+1)
		}
		return "&" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindArray:
		_, length, _ := typesIn.ArrayInfo(id)
		return fmt.Sprintf("[%s; %s]", labelDepth(typesIn, tt.Elem, depth+1), length)
	case KindSlice:
		return "[" + labelDepth(typesIn, tt.Elem, depth+1) + "]"
	case KindAdt:
		if typesIn.IsBox(id) {
			return "Box<" + labelDepth(typesIn, tt.Elem, depth+1) + ">"
		}
		return typesIn.Name(id)
	case KindTuple:
		members, _ := typesIn.Members(id)
		parts := labelList(typesIn, members, depth)
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindClosure:
		members, _ := typesIn.Members(id)
		return "closure " + typesIn.Name(id) + "(" + strings.Join(labelList(typesIn, members, depth), ", ") + ")"
	case KindCoroutine:
		members, _ := typesIn.Members(id)
		return "coroutine " + typesIn.Name(id) + "(" + strings.Join(labelList(typesIn, members, depth), ", ") + ")"
	case KindFnPtr:
		return "fn"
	case KindDynamic:
		return "dyn " + typesIn.Name(id)
	case KindParam:
		return typesIn.Name(id)
	default:
		return tt.Kind.String()
	}
}

func labelList(typesIn *Interner, ids []TypeID, depth int) []string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = labelDepth(typesIn, id, depth+1)
	}
	return parts
}

func formatIntType(width Width, signed bool) string {
	prefix := "i"
	if !signed {
		prefix = "u"
	}
	switch width {
	case WidthSize:
		return prefix + "size"
	case WidthAny:
		return prefix + "32"
	default:
		return fmt.Sprintf("%s%d", prefix, width)
	}
}

func formatFloatType(width Width) string {
	if width == Width32 {
		return "f32"
	}
	return "f64"
}
