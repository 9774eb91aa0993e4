// migrate aplica las migraciones SQL de migrations/postgres en orden.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "DSN de Postgres (default: env DATABASE_URL)")
		dir     = flag.String("dir", "migrations/postgres", "directorio con archivos *_up.sql / *_down.sql")
		down    = flag.Bool("down", false, "aplicar migraciones down en orden inverso")
		envFile = flag.String("env-file", ".env", "archivo .env a cargar (opcional)")
	)
	flag.Parse()

	if *envFile != "" {
		_ = godotenv.Load(*envFile)
	}
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		fail("missing -dsn (or DATABASE_URL)")
	}

	suffix := "_up.sql"
	if *down {
		suffix = "_down.sql"
	}

	files, err := listSQL(*dir, suffix)
	if err != nil {
		fail("list migrations: %v", err)
	}
	if *down {
		// Down en orden inverso
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	if len(files) == 0 {
		fail("no %s files found in %s", suffix, *dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, *dsn)
	if err != nil {
		fail("connect: %v", err)
	}
	defer pool.Close()

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			fail("read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			fail("apply %s: %v", f, err)
		}
		fmt.Println("applied", filepath.Base(f))
	}
}

func listSQL(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
