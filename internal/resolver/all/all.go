// Package all imports all available source resolvers for side-effect
// registration.
//
// Import this package from your main to ensure all sources are registered:
//
//	import _ "github.com/heavybluesrocker/scout-ai/internal/resolver/all"
package all

import (
	_ "github.com/heavybluesrocker/scout-ai/internal/resolver/fotmob"
	_ "github.com/heavybluesrocker/scout-ai/internal/resolver/playmaker"
	_ "github.com/heavybluesrocker/scout-ai/internal/resolver/resultados"
	_ "github.com/heavybluesrocker/scout-ai/internal/resolver/sofascore"
	_ "github.com/heavybluesrocker/scout-ai/internal/resolver/transfermarkt"
)
