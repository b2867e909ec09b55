package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedFile string

// listCmd 列出资源
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "列出已发布资源",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// createCmd 发布资源
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "从 YAML 种子文件发布资源",
	Long: `读取种子文件并在一个事务内写入资源、模板训练块与模板计划。

种子中的排期按标题引用同一文件里的训练块，days 的键为星期 1..7（1 为周一）。`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

// removeCmd 下架资源
var removeCmd = &cobra.Command{
	Use:   "remove <resource-id>",
	Short: "下架资源",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	createCmd.Flags().StringVarP(&seedFile, "file", "f", "", "种子文件路径")
	_ = createCmd.MarkFlagRequired("file")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	resources, err := a.resources.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("查询资源失败: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t标题\t标签\t创建时间")
	for _, r := range resources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Tags, r.CreatedAt)
	}
	return w.Flush()
}

func runCreate(cmd *cobra.Command, _ []string) error {
	seed, err := loadSeed(seedFile)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	created, err := a.resources.Publish(cmd.Context(), seed)
	if err != nil {
		return fmt.Errorf("发布资源失败: %w", err)
	}

	a.logger.Info("资源已发布",
		zap.String("resource_id", created.ID),
		zap.String("title", created.Title),
		zap.Int("blocks", len(seed.Blocks)),
		zap.Int("plans", len(seed.Plans)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), created.ID)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.resources.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("下架资源失败: %w", err)
	}

	a.logger.Info("资源已下架", zap.String("resource_id", args[0]))
	return nil
}
