package analyzer

import (
	"testing"

	"github.com/forcemetrics/apexscan/domain"
)

func TestUnusedFieldsDetectorFlagsUnreadField(t *testing.T) {
	source := `public class Catalog {
    public void describe() {
        List<Product2> products = [SELECT Id, Name, ProductCode FROM Product2 LIMIT 100];
        for (Product2 p : products) {
            System.debug(p.Name);
        }
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	findings := detector.Detect("Catalog", source)

	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Severity != domain.SeverityMinor {
		t.Errorf("Expected MINOR default severity, got %s", f.Severity)
	}
	if f.MemberName != "describe" {
		t.Errorf("Expected member 'describe', got '%s'", f.MemberName)
	}
	if f.LineNumber != 3 {
		t.Errorf("Expected line 3, got %d", f.LineNumber)
	}

	unused, ok := f.TypeMetadata["unusedFields"].([]string)
	if !ok {
		t.Fatalf("Expected unusedFields metadata, got %v", f.TypeMetadata)
	}
	if len(unused) != 1 || unused[0] != "ProductCode" {
		t.Errorf("Expected unused fields [ProductCode], got %v", unused)
	}

	original, ok := f.TypeMetadata["originalFields"].([]string)
	if !ok {
		t.Fatalf("Expected originalFields metadata, got %v", f.TypeMetadata)
	}
	if len(original) != 3 {
		t.Errorf("Expected 3 original fields, got %v", original)
	}
}

func TestUnusedFieldsDetectorAllFieldsUsed(t *testing.T) {
	source := `public class Catalog {
    public void describe() {
        List<Product2> products = [SELECT Id, Name, ProductCode FROM Product2 LIMIT 100];
        for (Product2 p : products) {
            System.debug(p.Name + ' ' + p.ProductCode);
        }
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	if findings := detector.Detect("Catalog", source); len(findings) != 0 {
		t.Errorf("Expected no findings when every field is read, got %d", len(findings))
	}
}

func TestUnusedFieldsDetectorIdAlwaysUsed(t *testing.T) {
	source := `public class Keys {
    public Set<Id> collect() {
        Set<Id> ids = new Set<Id>();
        for (Account a : [SELECT Id FROM Account LIMIT 10]) {
            ids.add(a.Id);
        }
        return ids;
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	if findings := detector.Detect("Keys", source); len(findings) != 0 {
		t.Errorf("Expected Id-only projection to never be flagged, got %d findings", len(findings))
	}
}

func TestUnusedFieldsDetectorSkipsAggregates(t *testing.T) {
	source := `public class Stats {
    public Integer total() {
        AggregateResult[] rows = [SELECT COUNT(Id) total FROM Account WHERE IsActive__c = true];
        return 0;
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	if findings := detector.Detect("Stats", source); len(findings) != 0 {
		t.Errorf("Expected aggregate projections to be skipped, got %d findings", len(findings))
	}
}

func TestUnusedFieldsDetectorStringLiteralCountsAsReference(t *testing.T) {
	source := `public class Dyn {
    public Object read() {
        Account a = [SELECT Id, AnnualRevenue FROM Account LIMIT 1];
        return a.get('AnnualRevenue');
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	if findings := detector.Detect("Dyn", source); len(findings) != 0 {
		t.Errorf("Expected dynamic field read to keep the field used, got %d findings", len(findings))
	}
}

func TestUnusedFieldsDetectorOtherQueryDoesNotCount(t *testing.T) {
	// Phone appears in the second query's text but nowhere in code, so
	// the first query's Phone projection is unused.
	source := `public class Two {
    public void run() {
        Account a = [SELECT Id, Phone FROM Account LIMIT 1];
        List<Contact> c = [SELECT Id FROM Contact WHERE Phone != null LIMIT 5];
        System.debug(a.Id + ' ' + c.size());
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	findings := detector.Detect("Two", source)

	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	unused, _ := findings[0].TypeMetadata["unusedFields"].([]string)
	if len(unused) != 1 || unused[0] != "Phone" {
		t.Errorf("Expected unused fields [Phone], got %v", unused)
	}
}

func TestUnusedFieldsDetectorDottedField(t *testing.T) {
	source := `public class Rel {
    public void run() {
        List<Contact> contacts = [SELECT Id, Account.Industry, Email FROM Contact LIMIT 10];
        for (Contact c : contacts) {
            System.debug(c.Email);
        }
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	findings := detector.Detect("Rel", source)

	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	unused, _ := findings[0].TypeMetadata["unusedFields"].([]string)
	if len(unused) != 1 || unused[0] != "Account.Industry" {
		t.Errorf("Expected unused fields [Account.Industry], got %v", unused)
	}
}

func TestUnusedFieldsDetectorNoQueries(t *testing.T) {
	source := `public class NoQueries {
    public void run() {
        System.debug('plain code');
    }
}`

	detector := NewUnusedFieldsDetector(UnusedFieldsConfig{})
	if findings := detector.Detect("NoQueries", source); findings != nil {
		t.Errorf("Expected nil findings for a unit without queries, got %v", findings)
	}
}
