package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/hargabyte/ctxpack/internal/facts"
)

const testPom = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
    <version>3.2.0</version>
  </parent>
  <groupId>com.shop</groupId>
  <artifactId>shop-service</artifactId>
  <version>1.4.0</version>
  <name>Shop Service</name>
  <properties>
    <slf4j.version>2.0.9</slf4j.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>${slf4j.version}</version>
    </dependency>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>shop-model</artifactId>
      <version>${project.version}</version>
    </dependency>
    <dependency>
      <groupId>org.junit.jupiter</groupId>
      <artifactId>junit-jupiter</artifactId>
      <version>${junit.version}</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>ignored</groupId>
        <artifactId>managed</artifactId>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>
`

const testGradle = `plugins {
    id 'java'
}

version = '0.3.1'

dependencies {
    implementation 'com.google.guava:guava:32.1.3-jre'
    // implementation 'commented:out:1.0'
    testImplementation("org.junit.jupiter:junit-jupiter:5.10.0")
    compileOnly 'org.projectlombok:lombok'
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMaven(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), testPom)
	writeFile(t, filepath.Join(root, "src/main/resources/application.yml"), "server:\n  port: 8080\n")
	writeFile(t, filepath.Join(root, "src/main/resources/application-dev.properties"), "debug=true\n")
	writeFile(t, filepath.Join(root, "src/main/resources/schema.sql"), "")
	pkg := filepath.Join(root, "src/main/java/com/shop")
	writeFile(t, filepath.Join(pkg, "OrderService.java"), "class OrderService {}\n")
	writeFile(t, filepath.Join(pkg, "Order.java"), "class Order {}\n")
	writeFile(t, filepath.Join(pkg, "OrderRepository.java"), "interface OrderRepository {}\n")
	writeFile(t, filepath.Join(pkg, "notes.txt"), "")

	p, err := Load(context.Background(), root, filepath.Join(pkg, "OrderService.java"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &facts.Project{
		Name:        "Shop Service",
		RootPath:    root,
		Language:    "Java",
		BuildSystem: Maven,
		Version:     "1.4.0",
		Dependencies: []facts.Dependency{
			{GroupID: "org.slf4j", ArtifactID: "slf4j-api", Version: "2.0.9"},
			{GroupID: "com.shop", ArtifactID: "shop-model", Version: "1.4.0"},
			{GroupID: "org.junit.jupiter", ArtifactID: "junit-jupiter", Version: "${junit.version}", Scope: "test"},
		},
		ConfigFiles: []string{
			"src/main/resources/application-dev.properties",
			"src/main/resources/application.yml",
		},
		RelatedFiles: []string{
			"src/main/java/com/shop/Order.java",
			"src/main/java/com/shop/OrderRepository.java",
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("project mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGradle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build.gradle"), testGradle)
	writeFile(t, filepath.Join(root, "settings.gradle"), "rootProject.name = 'inventory'\n")

	p, err := Load(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if p.Name != "inventory" || p.BuildSystem != Gradle || p.Version != "0.3.1" {
		t.Errorf("got name=%q build=%q version=%q", p.Name, p.BuildSystem, p.Version)
	}
	wantDeps := []facts.Dependency{
		{GroupID: "com.google.guava", ArtifactID: "guava", Version: "32.1.3-jre", Scope: "implementation"},
		{GroupID: "org.junit.jupiter", ArtifactID: "junit-jupiter", Version: "5.10.0", Scope: "testImplementation"},
		{GroupID: "org.projectlombok", ArtifactID: "lombok", Scope: "compileOnly"},
	}
	if diff := cmp.Diff(wantDeps, p.Dependencies); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if p.ConfigFiles != nil || p.RelatedFiles != nil {
		t.Errorf("expected no config or related files, got %v %v", p.ConfigFiles, p.RelatedFiles)
	}
}

func TestLoadWithoutBuildFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	writeFile(t, filepath.Join(root, "Main.java"), "class Main {}\n")

	p, err := Load(context.Background(), root, filepath.Join(root, "Main.java"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "scratch" || p.BuildSystem != Unknown || p.Language != "Java" {
		t.Errorf("got %+v", p)
	}
	if len(p.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", p.Dependencies)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), ""); err == nil {
			t.Error("expected an error for a missing root")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "src/main/resources/application.yml"), "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Load(ctx, root, ""); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("malformed pom", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "pom.xml"), "<project><dependencies>")
		if _, err := Load(context.Background(), root, ""); err == nil {
			t.Error("expected an error for a malformed pom.xml")
		}
	})
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), testPom)
	file := filepath.Join(root, "src/main/java/com/shop/OrderService.java")
	writeFile(t, file, "class OrderService {}\n")

	got, err := FindRoot(file)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindRoot: got %s, want %s", got, want)
	}
}

func TestExpandProperties(t *testing.T) {
	props := propertyMap{"a": "1", "b": "${a}"}
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"${a}", "1"},
		{"v${a}-${missing}", "v1-${missing}"},
		{"${b}", "${a}"},
		{"${unterminated", "${unterminated"},
	}
	for _, tt := range tests {
		if got := props.expand(tt.in); got != tt.want {
			t.Errorf("expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
