package route

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"endpoint.GO/handler"
	"endpoint.GO/model/entity"
	"endpoint.GO/model/uow"
	"endpoint.GO/route"
)

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows int
	Created   int
	Updated   int
	Skipped   int
	Warnings  []string
	TotalTime time.Duration
}

var importColumns = map[string]bool{
	"key": true, "name": true, "route": true, "route_group": true, "route_type": true,
	"auth_type": true, "request_method": true, "request_content_type": true, "csrf": true,
	"module_path": true, "symbol_name": true, "method_name": true, "active": true,
}

// Import reads route records from CSV and upserts them by key. Each row commits on its own;
// invalid rows are skipped with a warning.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		colIndex[h] = i
	}
	if _, ok := colIndex["key"]; !ok {
		return nil, fmt.Errorf("CSV must contain a 'key' column")
	}
	if _, ok := colIndex["route"]; !ok {
		return nil, fmt.Errorf("CSV must contain a 'route' column")
	}

	has := func(col string) bool {
		_, ok := colIndex[col]
		return ok
	}
	result := &ImportResult{}
	for _, h := range headers {
		if !importColumns[strings.TrimSpace(h)] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(rows)

	for i, row := range rows {
		line := i + 2
		get := func(col string) string {
			if idx, ok := colIndex[col]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		in, err := inputFromRow(get)
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		created, err := s.upsert(ctx, in, func(cur *entity.EndpointRoute) (Patch, error) {
			return importPatch(in, cur, get, has)
		})
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d (%s): %v", line, in.Key, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	result.TotalTime = time.Since(start)
	return result, nil
}

func (s *Service) upsert(ctx context.Context, in Input, patch func(*entity.EndpointRoute) (Patch, error)) (created bool, err error) {
	err = s.runner.Run(ctx, func(tx *uow.Tx) error {
		cur, err := s.repo.WithTx(tx.DB).FindByKey(ctx, in.Key, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			_, err = s.CreateTx(ctx, tx, in)
			return err
		}
		if err != nil {
			return err
		}
		p, err := patch(cur)
		if err != nil {
			return err
		}
		_, err = s.UpdateTx(ctx, tx, cur, p)
		return err
	})
	return created, err
}

// importPatch limits an update to the columns present in the file. Empty cells keep the
// stored value, except route_group and request_content_type where an empty cell clears it.
// Handler columns override the stored handler one key at a time.
func importPatch(in Input, cur *entity.EndpointRoute, get func(string) string, has func(string) bool) (Patch, error) {
	var p Patch
	set := func(col, v string, dst **string) {
		if has(col) && v != "" {
			*dst = &v
		}
	}
	set("name", in.Name, &p.Name)
	set("route", in.Route, &p.Route)
	set("route_type", in.RouteType, &p.RouteType)
	set("auth_type", in.AuthType, &p.AuthType)
	set("request_method", in.RequestMethod, &p.RequestMethod)
	if has("route_group") {
		p.RouteGroup = &in.RouteGroup
	}
	if has("request_content_type") {
		p.RequestContentType = &in.RequestContentType
	}
	if has("csrf") && get("csrf") != "" {
		p.CSRF = &in.CSRF
	}
	p.Active = in.Active

	ref := in.Options.Handler
	if ref.ModulePath == "" && ref.SymbolName == "" && ref.MethodName == "" {
		return p, nil
	}
	f, err := fieldsOf(cur)
	if err != nil {
		return p, err
	}
	opts := f.Options
	if ref.ModulePath != "" {
		opts.Handler.ModulePath = ref.ModulePath
	}
	if ref.SymbolName != "" {
		opts.Handler.SymbolName = ref.SymbolName
	}
	if ref.MethodName != "" {
		opts.Handler.MethodName = ref.MethodName
	}
	p.Options = &opts
	return p, nil
}

func inputFromRow(get func(string) string) (Input, error) {
	in := Input{
		Key:                get("key"),
		Name:               get("name"),
		Route:              get("route"),
		RouteGroup:         get("route_group"),
		RouteType:          get("route_type"),
		AuthType:           get("auth_type"),
		RequestMethod:      strings.ToUpper(get("request_method")),
		RequestContentType: get("request_content_type"),
		Options: route.Options{Handler: handler.Ref{
			ModulePath: get("module_path"),
			SymbolName: get("symbol_name"),
			MethodName: get("method_name"),
		}},
	}
	if in.Key == "" {
		return in, errors.New("empty key")
	}
	if v := get("csrf"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, fmt.Errorf("csrf: %w", err)
		}
		in.CSRF = b
	}
	if v := get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, fmt.Errorf("active: %w", err)
		}
		in.Active = &b
	}
	return in, nil
}
