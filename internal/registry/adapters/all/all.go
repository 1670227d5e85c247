// Package all importa todos los adapters para que se registren via init().
package all

import (
	_ "github.com/dropDatabas3/i18nmail/internal/registry/adapters/fs"
	_ "github.com/dropDatabas3/i18nmail/internal/registry/adapters/memory"
	_ "github.com/dropDatabas3/i18nmail/internal/registry/adapters/pg"
	_ "github.com/dropDatabas3/i18nmail/internal/registry/adapters/redis"
)
