//go:build ignore

// build.go - wlrecon build script
// Usage: go run build.go [-target=TARGET]
// Targets: all, cli, server, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "wlrecon"

var (
	rootDir string
	distDir string

	// Executable names (key = source dir under cmd/, value = output name)
	executables = map[string]string{
		"wlrecon":        "wlrecon",
		"wlrecon-server": "wlrecon-server",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s; run the build from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", "", "Target GOOS for release builds")
	goarch := flag.String("arch", "", "Target GOARCH for release builds")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, GOOS: *goos, GOARCH: *goarch}

	switch *target {
	case "all":
		buildAll(ctx)
	case "cli":
		buildExecutable("wlrecon", ctx)
	case "server":
		buildExecutable("wlrecon-server", ctx)
	case "clean":
		clean()
	case "test":
		runTests(ctx.Verbose)
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     wlrecon - Whitelist Reconciliation    " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// Build all executables
func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create dist directory: %v", err))
		os.Exit(1)
	}
	for name := range executables {
		buildExecutable(name, ctx)
	}
	copyConfigFiles()
	printSuccess("All components built successfully!")
}

// gitCommit returns the short HEAD hash, or "unknown" outside a checkout
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// Build a specific executable
func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	goos := ctx.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s...", name))
	outputPath := filepath.Join(distDir, exeName)

	ldflags := fmt.Sprintf("-s -w -X %[1]s/pkg/contracts.BuildTime=%[2]s -X %[1]s/pkg/contracts.GitCommit=%[3]s",
		module, time.Now().UTC().Format(time.RFC3339), gitCommit())

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = os.Environ()
	if ctx.GOOS != "" {
		cmd.Env = append(cmd.Env, "GOOS="+ctx.GOOS)
	}
	if ctx.GOARCH != "" {
		cmd.Env = append(cmd.Env, "GOARCH="+ctx.GOARCH)
	}
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

// copyConfigFiles ships example configuration next to the binaries
func copyConfigFiles() {
	for _, name := range []string{"config.example.yaml", ".env.example"} {
		src := filepath.Join(rootDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			if !os.IsNotExist(err) {
				printWarning(fmt.Sprintf("Skipping %s: %v", name, err))
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(distDir, name), data, 0644); err != nil {
			printWarning(fmt.Sprintf("Failed to copy %s: %v", name, err))
		}
	}
}

func clean() {
	printInfo("Cleaning build artifacts...")
	for _, dir := range []string{distDir, filepath.Join(rootDir, "data", "output")} {
		if err := os.RemoveAll(dir); err != nil {
			printError(fmt.Sprintf("Failed to clean %s: %v", dir, err))
		}
	}
	printSuccess("Build artifacts cleaned")
}

// Run tests
func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// Build release version
func buildRelease(ctx *BuildContext) {
	printInfo("Building release version...")
	clean()
	os.Setenv("CGO_ENABLED", "0")
	buildAll(ctx)

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("wlrecon\nCommit: %s\nBuilt: %s\n", gitCommit(), time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(versionFile, []byte(content), 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to write %s: %v", versionFile, err))
	}
	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Build wlrecon and wlrecon-server (default)")
	fmt.Println("  cli      Build the wlrecon command line")
	fmt.Println("  server   Build the HTTP server")
	fmt.Println("  clean    Remove dist/ and generated output")
	fmt.Println("  test     Run the Go tests with the race detector")
	fmt.Println("  release  Clean, then build all with CGO disabled")
}
