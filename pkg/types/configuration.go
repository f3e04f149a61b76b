package types

// Configuration holds opaque per-line customization data supplied by the
// storefront (for example ganging layouts or fabric repeat offsets). The
// backend stores it verbatim and never interprets the keys.
type Configuration map[string]string
