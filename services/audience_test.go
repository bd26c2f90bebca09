package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/thecoder877/Vrticko/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDirectory struct {
	byRole map[string][]string
	users  map[string]*models.User
	roles  map[string]string
	err    error
}

func (f *fakeDirectory) FindIDsByRoles(ctx context.Context, roles []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []string
	for _, role := range roles {
		ids = append(ids, f.byRole[role]...)
	}
	return ids, nil
}

func (f *fakeDirectory) FindByID(id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeDirectory) FindRolesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if role, ok := f.roles[id]; ok {
			out[id] = role
		}
	}
	return out, nil
}

func TestAudienceResolve(t *testing.T) {
	parentID := primitive.NewObjectID()
	dir := &fakeDirectory{
		byRole: map[string][]string{
			models.RoleParent:  {"p1", "p2"},
			models.RoleTeacher: {"t1"},
			models.RoleAdmin:   {"a1"},
		},
		users: map[string]*models.User{
			parentID.Hex(): {ID: parentID, Role: models.RoleParent},
		},
	}
	resolver := NewAudienceResolver(dir)

	t.Run("all includes every role", func(t *testing.T) {
		got, err := resolver.Resolve(context.Background(), models.TargetAll, "")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		want := []string{"p1", "p2", "t1", "a1"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("parents only", func(t *testing.T) {
		got, err := resolver.Resolve(context.Background(), models.TargetParents, "")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"p1", "p2"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("teachers only", func(t *testing.T) {
		got, err := resolver.Resolve(context.Background(), models.TargetTeachers, "")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"t1"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("individual", func(t *testing.T) {
		got, err := resolver.Resolve(context.Background(), models.TargetIndividual, parentID.Hex())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !reflect.DeepEqual(got, []string{parentID.Hex()}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("individual not found", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), models.TargetIndividual, primitive.NewObjectID().Hex())
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		if _, err := resolver.Resolve(context.Background(), "everyone", ""); err == nil {
			t.Error("expected error for unknown target")
		}
	})
}

func TestExcludeRole(t *testing.T) {
	dir := &fakeDirectory{
		roles: map[string]string{
			"p1": models.RoleParent,
			"a1": models.RoleAdmin,
			"t1": models.RoleTeacher,
		},
	}
	resolver := NewAudienceResolver(dir)

	got, err := resolver.ExcludeRole(context.Background(), []string{"p1", "a1", "t1"}, models.RoleAdmin)
	if err != nil {
		t.Fatalf("ExcludeRole: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"p1", "t1"}) {
		t.Errorf("got %v, want [p1 t1]", got)
	}

	t.Run("empty input", func(t *testing.T) {
		got, err := resolver.ExcludeRole(context.Background(), nil, models.RoleAdmin)
		if err != nil || got != nil {
			t.Errorf("expected nil, nil; got %v, %v", got, err)
		}
	})
}
