/*
Package file loads graph models from YAML (or JSON) definition files.

	fragments:
	  - name: client
	    nodes:
	      - name: C1
	        request_start: true
	        edges:
	          - {on: send, to: C2}
	      - name: C2
	        state: SUCCESS
	components:
	  client: [client]
	joins:
	  - name: rpc
	    from: client.send
	    to: server.recv
	    remote: true
	    schema: [tid, "req_id=request"]

Unknown keys are rejected.
*/
package file
