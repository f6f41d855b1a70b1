package analysis

import "strings"

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoid reports whether tag is a void element (no closing tag).
func IsVoid(tag string) bool {
	return voidElements[tag]
}

var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// IsBooleanAttr reports whether name is an HTML boolean attribute.
func IsBooleanAttr(name string) bool {
	return booleanAttrs[strings.ToLower(name)]
}

var svgElements = map[string]bool{
	"svg": true, "animate": true, "animateMotion": true, "animateTransform": true,
	"circle": true, "clipPath": true, "defs": true, "desc": true, "ellipse": true,
	"feBlend": true, "feColorMatrix": true, "feComposite": true, "feGaussianBlur": true,
	"feOffset": true, "filter": true, "foreignObject": true, "g": true, "image": true,
	"line": true, "linearGradient": true, "marker": true, "mask": true, "path": true,
	"pattern": true, "polygon": true, "polyline": true, "radialGradient": true,
	"rect": true, "stop": true, "symbol": true, "text": true, "textPath": true,
	"tspan": true, "use": true,
}

// IsSVG reports whether tag is an SVG element.
func IsSVG(tag string) bool {
	return svgElements[tag]
}

var aliases = map[string]string{
	"className": "class",
	"htmlFor":   "for",
}

// properties are set on the node rather than through setAttribute.
var properties = map[string]bool{
	"value":    true,
	"checked":  true,
	"selected": true,
	"muted":    true,
}

// contentProperties replace an element's children.
var contentProperties = map[string]bool{
	"innerHTML":   true,
	"textContent": true,
	"innerText":   true,
}

// IsContentProperty reports whether name replaces an element's children.
func IsContentProperty(name string) bool {
	return contentProperties[name]
}

var delegatedEvents = map[string]bool{
	"beforeinput": true, "click": true, "dblclick": true, "contextmenu": true,
	"focusin": true, "focusout": true, "input": true, "keydown": true, "keyup": true,
	"mousedown": true, "mousemove": true, "mouseout": true, "mouseover": true,
	"mouseup": true, "pointerdown": true, "pointermove": true, "pointerout": true,
	"pointerover": true, "pointerup": true, "touchend": true, "touchmove": true,
	"touchstart": true,
}

var unitless = map[string]bool{
	"animation-iteration-count": true, "border-image-outset": true,
	"border-image-slice": true, "border-image-width": true, "box-flex": true,
	"box-flex-group": true, "box-ordinal-group": true, "column-count": true,
	"columns": true, "flex": true, "flex-grow": true, "flex-positive": true,
	"flex-shrink": true, "flex-negative": true, "flex-order": true, "grid-row": true,
	"grid-row-end": true, "grid-row-span": true, "grid-row-start": true,
	"grid-column": true, "grid-column-end": true, "grid-column-span": true,
	"grid-column-start": true, "font-weight": true, "line-clamp": true,
	"line-height": true, "opacity": true, "order": true, "orphans": true,
	"tab-size": true, "widows": true, "z-index": true, "zoom": true,
	"fill-opacity": true, "flood-opacity": true, "stop-opacity": true,
	"stroke-dasharray": true, "stroke-dashoffset": true, "stroke-miterlimit": true,
	"stroke-opacity": true, "stroke-width": true,
}

// IsComponentName reports whether a tag names a component: it starts with
// an uppercase letter or is a member expression.
func IsComponentName(tag string) bool {
	if tag == "" {
		return false
	}
	c := tag[0]
	return (c >= 'A' && c <= 'Z') || strings.Contains(tag, ".")
}
