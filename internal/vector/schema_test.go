package vector

import (
	"context"
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	CreatedClass    *models.Class
	ExistingClass   *models.Class
	AddedProperties []*models.Property
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	if m.ExistingClass != nil {
		return true, nil
	}
	return false, nil
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	m.CreatedClass = class
	return nil
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return m.ExistingClass, nil
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	m.AddedProperties = append(m.AddedProperties, property)
	return nil
}

func TestEnsureSchema_CreatesClass(t *testing.T) {
	client := &MockSchemaClient{}
	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass == nil {
		t.Fatal("Class not created")
	}
	if client.CreatedClass.Vectorizer != "none" {
		t.Errorf("Vectorizer should be none, got %s", client.CreatedClass.Vectorizer)
	}

	expectedProps := map[string]string{
		"content":      "text",
		"source":       "string",
		"section":      "string",
		"fileType":     "string",
		"lastModified": "date",
		"createdAt":    "date",
	}

	for _, prop := range client.CreatedClass.Properties {
		if expectedType, ok := expectedProps[prop.Name]; ok {
			if len(prop.DataType) == 0 || prop.DataType[0] != expectedType {
				t.Errorf("Property %s has wrong DataType: %v (expected %s)", prop.Name, prop.DataType, expectedType)
			}
			delete(expectedProps, prop.Name)
		}
	}
	for name := range expectedProps {
		t.Errorf("Missing property %s", name)
	}
}

func TestEnsureSchema_AddsMissingProperties(t *testing.T) {
	// Simulate existing class without the date properties
	existingClass := &models.Class{
		Class: ClassName,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"string"}},
			{Name: "section", DataType: []string{"string"}},
			{Name: "fileType", DataType: []string{"string"}},
		},
	}

	client := &MockSchemaClient{
		ExistingClass: existingClass,
	}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass != nil {
		t.Fatal("Should not recreate class if it exists")
	}

	addedNames := make(map[string]bool)
	for _, p := range client.AddedProperties {
		addedNames[p.Name] = true
	}

	if !addedNames["lastModified"] {
		t.Error("Missing 'lastModified' property")
	}
	if !addedNames["createdAt"] {
		t.Error("Missing 'createdAt' property")
	}
	if addedNames["content"] {
		t.Error("Should not re-add existing 'content' property")
	}
}

func TestEnsureSchema_NoChangesWhenComplete(t *testing.T) {
	existingClass := &models.Class{
		Class: ClassName,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"string"}},
			{Name: "section", DataType: []string{"string"}},
			{Name: "fileType", DataType: []string{"string"}},
			{Name: "lastModified", DataType: []string{"date"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}

	client := &MockSchemaClient{
		ExistingClass: existingClass,
	}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass != nil {
		t.Fatal("Should not recreate class")
	}
	if len(client.AddedProperties) != 0 {
		t.Errorf("Should not add properties, added %d", len(client.AddedProperties))
	}
}
