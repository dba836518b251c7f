package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

// requiredRoles are the documents a submission must carry. A missing one is a
// fatal rejection before any pipeline stage runs. RoleAssets is accepted and
// stored but never consumed by the pipeline.
var requiredRoles = []domain.DocumentRole{
	domain.RoleIdentity,
	domain.RoleResume,
	domain.RoleBankStatement,
}

// storeDocuments persists the uploads under the case's storage prefix and
// returns the role -> path mapping the pipeline reads from.
func storeDocuments(
	ctx context.Context,
	storage ports.ObjectStorage,
	caseID string,
	docs []ports.DocumentUpload,
) (map[domain.DocumentRole]string, error) {
	byRole := make(map[domain.DocumentRole]ports.DocumentUpload, len(docs))
	for _, doc := range docs {
		if _, dup := byRole[doc.Role]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "store documents",
				fmt.Errorf("duplicate document for role %q", doc.Role))
		}
		byRole[doc.Role] = doc
	}

	for _, role := range requiredRoles {
		if _, ok := byRole[role]; !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "store documents",
				fmt.Errorf("missing required document %q", role))
		}
	}

	paths := make(map[domain.DocumentRole]string, len(byRole))
	for role, doc := range byRole {
		key := fmt.Sprintf("%s/%s_%s", caseID, role, sanitizeFilename(doc.Filename))
		if err := storage.Save(ctx, key, doc.Body); err != nil {
			return nil, fmt.Errorf("save %s document: %w", role, err)
		}
		paths[role] = storage.PathFor(key)
	}
	return paths, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
