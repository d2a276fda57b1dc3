package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/hotflow/internal/app"
	"github.com/yungbote/hotflow/internal/platform/apierr"
)

// persistent flag name -> viper key
var globalFlagKeys = map[string]string{
	"verbose":            app.KeyVerbose,
	"database-url":       app.KeyDatabaseURL,
	"copy-provider":      app.KeyCopyProvider,
	"llm-base-url":       app.KeyLLMBaseURL,
	"openai-model":       app.KeyLLMModel,
	"openai-temperature": app.KeyLLMTemperature,
}

func NewRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "hotflow",
		Short:         "Fetch Taobao affiliate items and generate marketing copy for them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "debug logging, including SQL statements")
	pf.String("database-url", "", "database connection URL (env HOTFLOW_DATABASE_URL)")
	pf.String("copy-provider", "", "copy provider: openai or deepseek (env HOTFLOW_COPY_PROVIDER)")
	pf.String("llm-base-url", "", "override the provider's API base URL")
	pf.String("openai-model", "", "override the provider's model")
	pf.String("openai-temperature", "", "override the sampling temperature (0-2)")
	for name, key := range globalFlagKeys {
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		newInitDBCmd(v),
		newFetchCmd(v),
		newGenerateCopyCmd(v),
		newListItemsCmd(v),
		newListCreativesCmd(v),
	)
	return root
}

// Main runs the CLI with args and returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return apierr.ExitCode(err)
}
