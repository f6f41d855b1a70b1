package pass

// Runtime helper names imported from the runtime module.
const (
	HelperTemplate        = "template"
	HelperGetNextElement  = "getNextElement"
	HelperGetNextMarker   = "getNextMarker"
	HelperHydrationSlot   = "hydrationSlot"
	HelperInsert          = "insert"
	HelperEffect          = "effect"
	HelperMemo            = "memo"
	HelperSetAttribute    = "setAttribute"
	HelperClassName       = "className"
	HelperClassList       = "classList"
	HelperStyle           = "style"
	HelperSpread          = "spread"
	HelperMergeProps      = "mergeProps"
	HelperUse             = "use"
	HelperDelegateEvents  = "delegateEvents"
	HelperCreateComponent = "createComponent"
	HelperGetOwner        = "getOwner"
	HelperSSR             = "ssr"
	HelperEscape          = "escape"
	HelperSSRAttribute    = "ssrAttribute"
	HelperSSRClassList    = "ssrClassList"
	HelperSSRStyle        = "ssrStyle"
	HelperSSRElement      = "ssrElement"
)
