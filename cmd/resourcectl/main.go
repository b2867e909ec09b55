// resourcectl 管理公共资源：发布种子文件、列出、下架。
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
